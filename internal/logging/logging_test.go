package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   LogLevel
		wantOK bool
	}{
		{name: "debug", input: "debug", want: LevelDebug, wantOK: true},
		{name: "info", input: "info", want: LevelInfo, wantOK: true},
		{name: "warn", input: "warn", want: LevelWarn, wantOK: true},
		{name: "warning alias", input: "warning", want: LevelWarn, wantOK: true},
		{name: "error", input: "error", want: LevelError, wantOK: true},
		{name: "case insensitive", input: "DEBUG", want: LevelDebug, wantOK: true},
		{name: "surrounding spaces", input: "  error ", want: LevelError, wantOK: true},
		{name: "unknown", input: "verbose", want: LevelInfo, wantOK: false},
		{name: "empty", input: "", want: LevelInfo, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be less than LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be less than LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be less than LevelError")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	previous := GetLevel()
	defer func() {
		log.SetOutput(os.Stderr)
		SetLevel(previous)
	}()
	log.SetOutput(&buf)

	SetLevel(LevelWarn)

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("expected error line, got %q", out)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at warn level")
	}
}
