package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug")

	l.WithField("order_id", "abc").Info("order captured")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["msg"] != "order captured" {
		t.Errorf("Expected msg 'order captured', got %v", entry["msg"])
	}

	if entry["order_id"] != "abc" {
		t.Errorf("Expected order_id field, got %v", entry["order_id"])
	}
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")

	l.Info("should be filtered")
	l.Warn("should pass")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("Expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, "should pass") {
		t.Error("Expected warn message to be logged")
	}
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "not-a-level")

	l.Debug("debug filtered")
	l.Info("info logged")

	out := buf.String()
	if strings.Contains(out, "debug filtered") {
		t.Error("Expected debug to be filtered at default info level")
	}
	if !strings.Contains(out, "info logged") {
		t.Error("Expected info to be logged")
	}
}

func TestMergeContexts(t *testing.T) {
	fields := merge(
		map[string]interface{}{"a": 1},
		map[string]interface{}{"b": 2, "a": 3},
	)

	if fields["a"] != 3 {
		t.Errorf("Expected later context to win, got %v", fields["a"])
	}
	if fields["b"] != 2 {
		t.Errorf("Expected b=2, got %v", fields["b"])
	}
}
