package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"trajconv/internal/logging"
)

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logging.WithComponent(logger, "discover").Info("scan complete",
		logging.Int("train", 12),
		logging.Bool("empty", false),
	)

	line := buf.String()
	if !strings.Contains(line, " INFO discover: scan complete") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "train=12") || !strings.Contains(line, "empty=false") {
		t.Fatalf("missing attrs in console line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component attr should be folded into prefix: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("instruction loaded", logging.String("text", "pick up cup"))

	if !strings.Contains(buf.String(), `text="pick up cup"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("probe ok", logging.Int("frames", 3))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if payload["msg"] != "probe ok" {
		t.Fatalf("unexpected msg field: %#v", payload)
	}
	if payload["level"] != "debug" {
		t.Fatalf("unexpected level field: %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field: %#v", payload)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info record should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
