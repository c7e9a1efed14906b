//go:build !darwin && !windows && !linux

package native

import (
	"context"
	"os"
)

type noAuthenticator struct{}

func NewAuthenticator() Authenticator {
	return noAuthenticator{}
}

func (noAuthenticator) Biometry() Biometry { return BiometryNone }

func (noAuthenticator) DomainState() ([]byte, error) { return nil, ErrNoBiometry }

func (noAuthenticator) Authenticate(ctx context.Context, prompt string) error {
	return ErrNoBiometry
}

func machineID() (string, error) {
	return os.Hostname()
}
