// Package testsupport provides shared helpers for package tests: temp-dir
// configs, quiet loggers, synthetic trajectory fixtures, and an
// ffmpeg-free frame source stub.
package testsupport
