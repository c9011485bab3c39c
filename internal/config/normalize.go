package config

import (
	"fmt"
	"strings"

	"trajconv/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeDiscovery()
	c.normalizeBuilder()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ManualDir, err = expandPath(c.Paths.ManualDir); err != nil {
		return fmt.Errorf("paths.manual_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.Name = strings.TrimSpace(c.Dataset.Name)
	if c.Dataset.Name == "" {
		c.Dataset.Name = defaultDatasetName
	}
	// The name lands in shard file names; keep it filesystem safe.
	c.Dataset.Name = textutil.SanitizeToken(c.Dataset.Name)
	c.Dataset.Version = strings.TrimSpace(c.Dataset.Version)
	if c.Dataset.Version == "" {
		c.Dataset.Version = defaultDatasetVersion
	}
	if c.Dataset.ImageWidth <= 0 {
		c.Dataset.ImageWidth = defaultImageWidth
	}
	if c.Dataset.ImageHeight <= 0 {
		c.Dataset.ImageHeight = defaultImageHeight
	}
	if c.Dataset.StateDim <= 0 {
		c.Dataset.StateDim = defaultStateDim
	}
	if c.Dataset.ActionDim <= 0 {
		c.Dataset.ActionDim = defaultActionDim
	}
	if c.Dataset.JPEGQuality <= 0 || c.Dataset.JPEGQuality > 100 {
		c.Dataset.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.Depth <= 0 {
		c.Discovery.Depth = defaultDepth
	}
	c.Discovery.TrajPrefix = strings.TrimSpace(c.Discovery.TrajPrefix)
	if c.Discovery.TrajPrefix == "" {
		c.Discovery.TrajPrefix = defaultTrajPrefix
	}
}

func (c *Config) normalizeBuilder() {
	if c.Builder.Workers <= 0 {
		c.Builder.Workers = defaultWorkers
	}
	if c.Builder.ChunkSize <= 0 {
		c.Builder.ChunkSize = defaultChunkSize
	}
	if c.Builder.DecodeTimeoutSeconds < 0 {
		c.Builder.DecodeTimeoutSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
