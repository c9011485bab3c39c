package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"trajconv/internal/config"
	"trajconv/internal/dataset"
)

// writeConfigFile persists a config with temp directories and returns its
// path alongside the config itself.
func writeConfigFile(t *testing.T, mutate func(*config.Config)) (string, config.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ManualDir = filepath.Join(base, "manual")
	cfg.Paths.OutputDir = filepath.Join(base, "dataset")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if mutate != nil {
		mutate(&cfg)
	}

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(base, "trajconv.toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, cfg
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandShowsHelp(t *testing.T) {
	output, err := runCommand(t)
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	for _, sub := range []string{"convert", "discover", "status", "episodes", "config"} {
		if !bytes.Contains([]byte(output), []byte(sub)) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestDiscoverCommand(t *testing.T) {
	configPath, cfg := writeConfigFile(t, func(c *config.Config) {
		c.Discovery.Depth = 2
		c.Discovery.TrainProportion = 0.5
	})
	for _, name := range []string{"traj0", "traj1", "traj2", "traj3"} {
		dir := filepath.Join(cfg.Paths.ManualDir, "session", name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	output, err := runCommand(t, "--config", configPath, "discover", "--list")
	if err != nil {
		t.Fatalf("discover failed: %v\n%s", err, output)
	}
	for _, want := range []string{"train", "val", "traj0", "traj3"} {
		if !bytes.Contains([]byte(output), []byte(want)) {
			t.Errorf("discover output missing %q:\n%s", want, output)
		}
	}
}

func TestEpisodesCommandEmptyManifest(t *testing.T) {
	configPath, _ := writeConfigFile(t, nil)

	output, err := runCommand(t, "--config", configPath, "episodes")
	if err != nil {
		t.Fatalf("episodes failed: %v\n%s", err, output)
	}
	if !bytes.Contains([]byte(output), []byte("No conversion runs")) {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func statsFixture() dataset.RunStats {
	return dataset.RunStats{
		RunID:     "0d4f9a2c",
		Succeeded: 3,
		Failed:    1,
		Duration:  1500 * time.Millisecond,
		Splits: map[dataset.Split]dataset.SplitStats{
			dataset.SplitTrain: {
				Episodes: 3,
				Steps:    42,
				Shards:   []dataset.ShardInfo{{Name: "soar_dataset-train.00000.jsonl", Episodes: 3, Steps: 42}},
			},
		},
	}
}

func TestRunSummaryRendersSplits(t *testing.T) {
	summary := renderRunSummary("soar_dataset", statsFixture())
	for _, want := range []string{"Soar Dataset", "Train episodes", "Succeeded"} {
		if !bytes.Contains([]byte(summary), []byte(want)) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
