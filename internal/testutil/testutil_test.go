package testutil

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/banshee-data/pointplay/internal/monitoring"
)

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("test error"))
}

func TestCaptureLogs(t *testing.T) {
	rec := CaptureLogs(t)
	monitoring.Logf("frame %d of %d", 2, 9)
	tagged := monitoring.Tagged("cloud")
	tagged("range %s", "[0, 1]")

	lines := rec.Lines()
	if len(lines) != 2 {
		t.Fatalf("captured %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "frame 2 of 9" || lines[1] != "[cloud] range [0, 1]" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestMuteLogs(t *testing.T) {
	rec := CaptureLogs(t)
	t.Run("muted", func(t *testing.T) {
		MuteLogs(t)
		monitoring.Logf("dropped")
	})
	monitoring.Logf("kept")

	lines := rec.Lines()
	if len(lines) != 1 || lines[0] != "kept" {
		t.Errorf("MuteLogs leaked or did not restore: %q", lines)
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "cloud.csv", "x,y,z\n")
	if !strings.HasSuffix(path, "cloud.csv") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "x,y,z\n" {
		t.Errorf("content = %q", data)
	}
}
