package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid json log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message", "page", 2)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["message"] != "warn message" {
		t.Fatalf("unexpected message: %v", entries[0]["message"])
	}
	if entries[0]["page"] != float64(2) {
		t.Fatalf("expected page field, got %v", entries[0]["page"])
	}
}

func TestLoggerErrorCarriesError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Error("exchange failed", errors.New("boom"), "status", 502, "dangling")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entries[0]["error"])
	}
	if entries[0]["status"] != float64(502) {
		t.Fatalf("expected status field, got %v", entries[0]["status"])
	}
	if _, ok := entries[0]["dangling"]; ok {
		t.Fatal("dangling key must be dropped")
	}
}

func TestLoggerWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).With("component", "strava")

	log.Info("hello")

	entries := decodeLines(t, &buf)
	if entries[0]["component"] != "strava" {
		t.Fatalf("expected component field, got %v", entries[0]["component"])
	}
	if entries[0]["service"] == nil {
		t.Fatal("expected service field")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got.String() != "info" {
		t.Fatalf("expected info, got %s", got)
	}
}
