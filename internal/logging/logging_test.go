package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != InfoLevel {
		t.Errorf("expected Level to be InfoLevel, got %v", cfg.Level)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected Output to be os.Stderr")
	}
	if cfg.Pretty != false {
		t.Errorf("expected Pretty to be false")
	}
	if cfg.TimeFormat != time.RFC3339 {
		t.Errorf("expected TimeFormat to be RFC3339, got %s", cfg.TimeFormat)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"FATAL", FatalLevel},
		{"off", Disabled},
		{"  info  ", InfoLevel},
		{"unknown", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInit_RespectsLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, Output: &buf})

	Info().Msg("hidden")
	Warn().Str("key", "value").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestComponent_AddsField(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, Output: &buf})

	log := Component("executor")
	log.Debug().Msg("batch started")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["component"] != "executor" {
		t.Errorf("expected component field, got %v", line)
	}
}

func TestSetLevel(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, Output: &buf})
	SetLevel(ErrorLevel)

	Warn().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output after raising level, got %s", buf.String())
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	buf.Reset()
	return line
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(&types.Config{LogLevel: "debug", Session: "studio"})
	if cfg.Level != DebugLevel {
		t.Errorf("expected DebugLevel, got %v", cfg.Level)
	}
	if cfg.Session != "studio" {
		t.Errorf("expected session studio, got %q", cfg.Session)
	}

	cfg = FromAppConfig(&types.Config{})
	if cfg.Level != InfoLevel {
		t.Errorf("empty logLevel should keep InfoLevel, got %v", cfg.Level)
	}
	if FromAppConfig(nil) != DefaultConfig() {
		t.Error("nil config should yield the defaults")
	}
}

func TestBindSession(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, Output: &buf, Session: "first"})

	Warn().Msg("one")
	if line := decodeLine(t, &buf); line["session"] != "first" {
		t.Errorf("expected session first, got %v", line)
	}

	BindSession("second")
	Info().Msg("filtered")
	if buf.Len() != 0 {
		t.Errorf("binding a session must keep the level, got %s", buf.String())
	}
	Warn().Msg("two")
	if line := decodeLine(t, &buf); line["session"] != "second" {
		t.Errorf("expected session second, got %v", line)
	}

	BindSession("")
	Warn().Msg("three")
	if line := decodeLine(t, &buf); line["session"] != nil {
		t.Errorf("expected no session field, got %v", line)
	}
}

func TestSetLevelKeepsSession(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, Output: &buf, Session: "kept"})
	SetLevel(DebugLevel)

	Debug().Msg("visible")
	if line := decodeLine(t, &buf); line["session"] != "kept" {
		t.Errorf("expected session kept, got %v", line)
	}
}

func TestApply(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, Output: &buf})

	Apply(&types.Config{})
	Apply(nil)
	if Logger.GetLevel() != InfoLevel {
		t.Errorf("config without logLevel changed the level to %v", Logger.GetLevel())
	}

	Apply(&types.Config{LogLevel: "ERROR"})
	if Logger.GetLevel() != ErrorLevel {
		t.Errorf("expected ErrorLevel, got %v", Logger.GetLevel())
	}
}

func TestCommand_AddsIndexAndType(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, Output: &buf})

	log := Command(2, action.TypeSetStep)
	log.Debug().Msg("command failed")

	line := decodeLine(t, &buf)
	if line["component"] != "executor" || line["type"] != "setStep" || line["index"] != float64(2) {
		t.Errorf("unexpected fields: %v", line)
	}
}
