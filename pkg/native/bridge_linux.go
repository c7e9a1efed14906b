//go:build linux

package native

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"
)

const (
	fprintdService      = "net.reactivated.Fprint"
	fprintdPath         = "/net/reactivated/Fprint/Manager"
	fprintdInterface    = "net.reactivated.Fprint.Manager"
	fprintdDevInterface = "net.reactivated.Fprint.Device"
)

// Status codes returned by fprintd during verification
const (
	verifyStatusMatch   = "verify-match"
	verifyStatusNoMatch = "verify-no-match"
)

// fprintdAuthenticator verifies fingerprints through fprintd on the system
// bus. An empty username makes fprintd act for the calling user.
type fprintdAuthenticator struct{}

func NewAuthenticator() Authenticator {
	return fprintdAuthenticator{}
}

func defaultDevice(ctx context.Context) (*dbus.Conn, dbus.BusObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	var path dbus.ObjectPath
	manager := conn.Object(fprintdService, fprintdPath)
	if err := manager.CallWithContext(ctx, fprintdInterface+".GetDefaultDevice", 0).Store(&path); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoBiometry, err)
	}
	return conn, conn.Object(fprintdService, path), nil
}

func enrolledFingers(ctx context.Context, device dbus.BusObject) ([]string, error) {
	var fingers []string
	err := device.CallWithContext(ctx, fprintdDevInterface+".ListEnrolledFingers", 0, "").Store(&fingers)
	if err != nil {
		return nil, err
	}
	sort.Strings(fingers)
	return fingers, nil
}

func (fprintdAuthenticator) Biometry() Biometry {
	ctx := context.Background()
	_, device, err := defaultDevice(ctx)
	if err != nil {
		return BiometryNone
	}
	fingers, err := enrolledFingers(ctx, device)
	if err != nil || len(fingers) == 0 {
		return BiometryNone
	}
	return BiometryFingerprint
}

// DomainState covers the enrolled fingers and the host name.
func (fprintdAuthenticator) DomainState() ([]byte, error) {
	ctx := context.Background()
	_, device, err := defaultDevice(ctx)
	if err != nil {
		return nil, err
	}
	fingers, err := enrolledFingers(ctx, device)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled fingers: %w", err)
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return nil, fmt.Errorf("failed to read host name: %w", err)
	}
	host := unix.ByteSliceToString(uts.Nodename[:])
	return []byte(host + "|" + strings.Join(fingers, ",")), nil
}

func (fprintdAuthenticator) Authenticate(ctx context.Context, prompt string) error {
	conn, device, err := defaultDevice(ctx)
	if err != nil {
		return err
	}

	if err := device.CallWithContext(ctx, fprintdDevInterface+".Claim", 0, "").Err; err != nil {
		return fmt.Errorf("failed to claim fingerprint reader: %w", err)
	}
	defer device.Call(fprintdDevInterface+".Release", 0)

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(device.Path()),
		dbus.WithMatchInterface(fprintdDevInterface),
		dbus.WithMatchMember("VerifyStatus"),
	}
	if err := conn.AddMatchSignal(match...); err != nil {
		return fmt.Errorf("failed to subscribe to fprintd: %w", err)
	}
	defer func() { _ = conn.RemoveMatchSignal(match...) }()

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	if prompt != "" {
		fmt.Fprintln(os.Stderr, prompt)
	}
	if err := device.CallWithContext(ctx, fprintdDevInterface+".VerifyStart", 0, "any").Err; err != nil {
		return fmt.Errorf("failed to start verification: %w", err)
	}
	defer device.Call(fprintdDevInterface+".VerifyStop", 0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("system bus connection closed")
			}
			if sig.Path != device.Path() || sig.Name != fprintdDevInterface+".VerifyStatus" || len(sig.Body) < 2 {
				continue
			}
			result, _ := sig.Body[0].(string)
			done, _ := sig.Body[1].(bool)
			switch {
			case result == verifyStatusMatch:
				return nil
			case result == verifyStatusNoMatch:
				return ErrAuthentication
			case done:
				return fmt.Errorf("%w: %s", ErrAuthentication, result)
			}
		}
	}
}

func machineID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to read machine id")
}
