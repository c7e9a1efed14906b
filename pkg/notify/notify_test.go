package notify

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

// TestNotifierStderr tests stderr notifications
func TestNotifierStderr(t *testing.T) {
	// Capture stderr
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	notifier := New("stderr")
	notifier.NotifyError(errors.New("failed to enable biometric unlock: sensor busy"))

	// Restore stderr and read output
	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "Warning") {
		t.Errorf("Expected warning message, got: %s", output)
	}
	if !strings.Contains(output, "sensor busy") {
		t.Errorf("Expected error text in warning, got: %s", output)
	}
}

// TestNotifierSilent tests silent mode
func TestNotifierSilent(t *testing.T) {
	var buf bytes.Buffer
	notifier := &Notifier{method: "silent", out: &buf}

	notifier.NotifyError(errors.New("boom"))
	notifier.NotifyLocked()

	if buf.Len() != 0 {
		t.Errorf("Expected no output in silent mode, got: %s", buf.String())
	}
}

func TestNotifierNilError(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).NotifyError(nil)
	if buf.Len() != 0 {
		t.Errorf("Expected no output for nil error, got: %s", buf.String())
	}
}

func TestNotifyLocked(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).NotifyLocked()
	if !strings.Contains(buf.String(), "locked") {
		t.Errorf("Expected lock notice, got: %s", buf.String())
	}
}
