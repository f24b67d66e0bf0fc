package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func parseLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Log line is not valid JSON: %q (%v)", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestJSONLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	log.Info("flow added", FlowID("f1"), Float64("amount", 42.5))

	entries := parseLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["level"] != "INFO" || entry["msg"] != "flow added" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	fields := entry["fields"].(map[string]any)
	if fields["flow_id"] != "f1" || fields["amount"] != 42.5 {
		t.Errorf("Unexpected fields: %v", fields)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")

	if got := len(parseLines(t, &buf)); got != 2 {
		t.Errorf("Expected 2 entries above warn, got %d", got)
	}

	log.SetLevel(DebugLevel)
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("SetLevel should open the debug gate")
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	child := log.With(Component("engine"))
	child.Info("ready", Int("nodes", 3))

	entries := parseLines(t, &buf)
	fields := entries[0]["fields"].(map[string]any)
	if fields["component"] != "engine" {
		t.Errorf("Child logger should carry preset fields, got %v", fields)
	}
	if fields["nodes"] != float64(3) {
		t.Errorf("Call-site fields should merge in, got %v", fields)
	}

	// The parent is unaffected
	buf.Reset()
	log.Info("plain")
	entries = parseLines(t, &buf)
	if _, ok := entries[0]["fields"]; ok {
		t.Error("Parent logger must not inherit child fields")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		field Field
		key   string
	}{
		{String("k", "v"), "k"},
		{Int("count", 1), "count"},
		{Bool("ok", true), "ok"},
		{Duration("elapsed", time.Second), "elapsed"},
		{Error(errors.New("boom")), "error"},
		{Component("engine"), "component"},
		{NodeID("n1"), "node_id"},
		{FlowID("f1"), "flow_id"},
		{Operation("add_flow"), "operation"},
		{Count(5), "count"},
	}
	for _, c := range cases {
		if c.field.Key != c.key {
			t.Errorf("Expected key %q, got %q", c.key, c.field.Key)
		}
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(log, "recalculated", Count(4))
	timer.End()

	entries := parseLines(t, &buf)
	fields := entries[0]["fields"].(map[string]any)
	if _, ok := fields["latency"]; !ok {
		t.Errorf("Timer should record latency, got %v", fields)
	}

	buf.Reset()
	StartTimer(log, "failed op").EndError(errors.New("boom"))
	entries = parseLines(t, &buf)
	if entries[0]["level"] != "ERROR" {
		t.Errorf("EndError should log at error level, got %v", entries[0]["level"])
	}
}
