package testsupport

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"trajconv/internal/config"
	"trajconv/internal/logging"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ManualDir = filepath.Join(base, "manual")
	cfg.Paths.OutputDir = filepath.Join(base, "dataset")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Builder.Workers = 2
	cfg.Builder.ChunkSize = 4

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers overrides the builder worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Builder.Workers = n
	}
}

// WithChunkSize overrides the episodes-per-shard limit on the test config.
func WithChunkSize(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Builder.ChunkSize = n
	}
}

// NewLogger returns a quiet logger suitable for exercising code paths that
// expect one. Output is discarded so test logs stay readable.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()

	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: io.Discard})
	if err != nil {
		t.Fatalf("construct test logger: %v", err)
	}
	return logger
}
