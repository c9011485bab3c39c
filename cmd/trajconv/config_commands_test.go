package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Wrote sample configuration") {
		t.Errorf("unexpected output: %s", output)
	}

	payload, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	for _, key := range []string{"manual_dir", "output_dir", "train_proportion", "chunk_size"} {
		if !strings.Contains(string(payload), key) {
			t.Errorf("sample config missing key %q", key)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	configPath, _ := writeConfigFile(t, nil)

	output, err := runCommand(t, "--config", configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestConfigValidateRejectsBadProportion(t *testing.T) {
	configPath, _ := writeConfigFile(t, nil)
	payload, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	mangled := strings.Replace(string(payload), "train_proportion = 1.0", "train_proportion = 1.5", 1)
	if mangled == string(payload) {
		t.Fatal("fixture config did not contain train_proportion = 1.0")
	}
	if err := os.WriteFile(configPath, []byte(mangled), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCommand(t, "--config", configPath, "config", "validate"); err == nil {
		t.Fatal("expected validation error for out-of-range proportion")
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	configPath, cfg := writeConfigFile(t, nil)

	output, err := runCommand(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, cfg.Paths.ManualDir) {
		t.Errorf("show output missing manual dir:\n%s", output)
	}
	if !strings.Contains(output, "chunk_size") {
		t.Errorf("show output missing builder section:\n%s", output)
	}
}
