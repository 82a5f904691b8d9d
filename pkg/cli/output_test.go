package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, "12 entries verified"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if got := buf.String(); got != "12 entries verified\n" {
		t.Errorf("FormatTo() = %q", got)
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]any{
		"unit_id": "unit-7f3a",
		"score":   0.8869,
	}

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["unit_id"] != "unit-7f3a" {
		t.Errorf("unit_id = %v, want unit-7f3a", decoded["unit_id"])
	}
	if !strings.Contains(buf.String(), "  ") {
		t.Error("JSON output should be indented")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{OutputFormat("junit"), "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		f := NewFormatter(tt.format)
		switch f.(type) {
		case *TextFormatter:
			if tt.want != "*cli.TextFormatter" {
				t.Errorf("NewFormatter(%q) = TextFormatter, want %s", tt.format, tt.want)
			}
		case *JSONFormatter:
			if tt.want != "*cli.JSONFormatter" {
				t.Errorf("NewFormatter(%q) = JSONFormatter, want %s", tt.format, tt.want)
			}
		}
	}
}
