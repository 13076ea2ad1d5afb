package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	Init("warn", "json")
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("Lines below warn level were logged:\n%s", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("Warn/error lines missing:\n%s", out)
	}
}

func TestFormattingIncludesLevelTag(t *testing.T) {
	Init("debug", "json")
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("processed %d ticks", 42)

	out := buf.String()
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("Missing level tag:\n%s", out)
	}
	if !strings.Contains(out, "processed 42 ticks") {
		t.Errorf("Format args not applied:\n%s", out)
	}
}

func TestExchangeLocation(t *testing.T) {
	loc := ExchangeLocation()
	if loc == nil {
		t.Fatal("ExchangeLocation returned nil")
	}
}
