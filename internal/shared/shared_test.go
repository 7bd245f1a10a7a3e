package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 36 {
			t.Fatalf("expected uuid string of length 36, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("capture queued", "title", "Deep Work")

	out := buf.String()
	if !strings.Contains(out, "capture queued") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "Deep Work") {
		t.Errorf("expected log output to contain key-value pair, got %q", out)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"progress": 45}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("compact marshal failed: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Errorf("compact output should not contain newlines: %q", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("pretty marshal failed: %v", err)
	}
	if !strings.Contains(string(pretty), "  ") {
		t.Errorf("pretty output should be indented: %q", pretty)
	}
}

func TestOpenBrowserUnsupportedPlatform(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()
	getRuntime = func() string { return "plan9" }

	if err := OpenBrowser("https://traylist.vercel.app"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}
