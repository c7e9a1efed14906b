//go:build windows

package native

import (
	"context"
	"fmt"
	"strings"

	"github.com/julian-bruyers/winhello-go"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// helloAuthenticator uses Windows Hello. Windows Hello does not say which
// sensor it will use, so it is reported as a face sensor.
type helloAuthenticator struct{}

func NewAuthenticator() Authenticator {
	return helloAuthenticator{}
}

func (helloAuthenticator) Biometry() Biometry {
	if !winhello.Available() {
		return BiometryNone
	}
	return BiometryFace
}

// DomainState binds the enrollment to the machine and the signed-in user.
func (helloAuthenticator) DomainState() ([]byte, error) {
	computer, err := windows.ComputerName()
	if err != nil {
		return nil, fmt.Errorf("failed to get computer name: %w", err)
	}
	user, err := windows.GetCurrentProcessToken().GetTokenUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get token user: %w", err)
	}
	return []byte(computer + "|" + user.User.Sid.String()), nil
}

func (helloAuthenticator) Authenticate(ctx context.Context, prompt string) error {
	if !winhello.Available() {
		return ErrNoBiometry
	}
	if prompt == "" {
		prompt = "Authentication required to unlock your vault"
	}

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := winhello.Authenticate(prompt)
		done <- result{ok, err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("Windows Hello authentication failed: %w", res.err)
		}
		if !res.ok {
			return ErrAuthentication
		}
		return nil
	}
}

func machineID() (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Cryptography`, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return "", fmt.Errorf("failed to open cryptography key: %w", err)
	}
	defer key.Close()

	guid, _, err := key.GetStringValue("MachineGuid")
	if err != nil {
		return "", fmt.Errorf("failed to read MachineGuid: %w", err)
	}
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return "", fmt.Errorf("empty MachineGuid")
	}
	return guid, nil
}
