package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Notifier shows transient notices to the user
type Notifier struct {
	method string
	out    io.Writer
}

// New creates a notifier for the given method: stderr, macos or silent
func New(method string) *Notifier {
	return &Notifier{method: method, out: os.Stderr}
}

// NewWriter creates a stderr-style notifier writing to w
func NewWriter(w io.Writer) *Notifier {
	return &Notifier{method: "stderr", out: w}
}

// NotifyError reports a recoverable error, such as a failed biometric change
func (n *Notifier) NotifyError(err error) {
	if err == nil {
		return
	}
	n.notify(fmt.Sprintf("Warning: %v", err))
}

// NotifyLocked reports that the vault locked itself after the timeout
func (n *Notifier) NotifyLocked() {
	n.notify("Vault locked after inactivity")
}

func (n *Notifier) notify(message string) {
	switch n.method {
	case "silent":
		return
	case "macos":
		n.notifyMacOS(message)
	default:
		fmt.Fprintln(n.out, message)
	}
}

func (n *Notifier) notifyMacOS(message string) {
	// Use %q to safely escape the message for AppleScript, preventing injection
	cmd := exec.Command("osascript", "-e",
		fmt.Sprintf(`display notification %q with title "unlocksmith"`, message))
	_ = cmd.Run() // Ignore errors
}
