// Package config loads, normalizes, and validates trajconv configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/trajconv/config.toml or
// ./trajconv.toml. The Config type centralizes every knob the converter
// needs: input/output directories, dataset geometry, discovery rules, and
// builder parallelism.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
