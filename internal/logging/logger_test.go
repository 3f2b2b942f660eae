package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinerate/internal/config"
	"cinerate/internal/logging"
	"cinerate/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("server started")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "cinerate.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "server started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without source")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no source information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "gateway").Info("cache hit",
		logging.String("key", "imdb_rating_the matrix"),
		logging.Bool("cached_null", false))

	line := buf.String()
	for _, fragment := range []string{"INFO gateway: cache hit", `key="imdb_rating_the matrix"`, "cached_null=false"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithTitle(ctx, "Dune: Part Two")
	logging.WithContext(ctx, logger).Debug("resolving")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if payload[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("expected correlation id, got %v", payload)
	}
	if payload[logging.FieldMovieTitle] != "Dune: Part Two" {
		t.Fatalf("expected movie title, got %v", payload)
	}
	if payload["level"] != "debug" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "detail lookup failed", "detail_failed", logging.Error(errors.New("boom")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %s in %v", key, payload)
		}
	}
	if payload[logging.FieldEventType] != "detail_failed" {
		t.Fatalf("unexpected event type: %v", payload[logging.FieldEventType])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
