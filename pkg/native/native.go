// Package native bridges to the operating system's secret store and biometric
// sensor.
package native

import (
	"context"
	"crypto/sha256"
	"errors"
)

var (
	ErrNotFound       = errors.New("secret not found")
	ErrNoBiometry     = errors.New("biometric authentication is not available on this device")
	ErrAuthentication = errors.New("biometric authentication failed")
)

// Store keeps small secrets in the platform keychain.
type Store interface {
	Set(account string, data []byte) error
	Get(account string) ([]byte, error)
	Delete(account string) error
}

// Biometry is the biometric sensor the platform reports.
type Biometry int

const (
	BiometryNone Biometry = iota
	BiometryFingerprint
	BiometryFace
)

func (b Biometry) String() string {
	switch b {
	case BiometryFingerprint:
		return "fingerprint"
	case BiometryFace:
		return "face"
	default:
		return "none"
	}
}

// Authenticator prompts the user for biometric authentication.
//
// DomainState returns an opaque fingerprint of the biometric enrollment; it
// changes when enrollment changes.
type Authenticator interface {
	Biometry() Biometry
	DomainState() ([]byte, error)
	Authenticate(ctx context.Context, prompt string) error
}

// DeviceKey returns a 32-byte key bound to this machine.
func DeviceKey() ([]byte, error) {
	id, err := machineID()
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256([]byte(id))
	return hash[:], nil
}
