package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("no-op logger should not reach the previous logger")
	}
}

func TestTagged(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf := Tagged("playback")
	logf("frame %d", 3)
	if got != "[playback] frame 3" {
		t.Errorf("got %q, want %q", got, "[playback] frame 3")
	}

	// A logger swapped in after Tagged was called is still used.
	var swapped string
	SetLogger(func(format string, v ...interface{}) {
		swapped = fmt.Sprintf(format, v...)
	})
	logf("stopped")
	if swapped != "[playback] stopped" {
		t.Errorf("got %q, want %q", swapped, "[playback] stopped")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
