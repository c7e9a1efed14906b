// Package biometrics implements biometric unlock on top of the native bridge.
//
// Enabling biometric unlock stores the current enrollment fingerprint in the
// keychain. Integrity is valid while the stored fingerprint still matches the
// device's, so re-enrolling a finger or face turns biometric unlock off until
// the user enables it again.
package biometrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bonjoski/unlocksmith/pkg/native"
	"github.com/bonjoski/unlocksmith/pkg/unlock"
)

const EnrollmentAccount = "biometric-unlock-state"

var (
	ErrNotEnabled       = errors.New("biometric unlock is not enabled")
	ErrIntegrityChanged = errors.New("biometric enrollment changed since biometric unlock was enabled")
)

// Service reads and changes the biometric unlock state.
type Service struct {
	Auth  native.Authenticator
	Store native.Store

	// Prompt is shown by the platform when authenticating.
	Prompt string
	// Kind overrides the sensor kind reported by the platform: "face" or
	// "fingerprint". Empty or "auto" keeps the platform's answer.
	Kind string
}

func New(auth native.Authenticator, store native.Store) *Service {
	return &Service{Auth: auth, Store: store}
}

func (s *Service) kind(biometry native.Biometry) unlock.BiometricKind {
	switch s.Kind {
	case "face":
		return unlock.FaceScan
	case "fingerprint":
		return unlock.FingerprintScan
	}
	if biometry == native.BiometryFace {
		return unlock.FaceScan
	}
	return unlock.FingerprintScan
}

func (s *Service) Status(ctx context.Context) (unlock.BiometricsStatus, error) {
	biometry := s.Auth.Biometry()
	if biometry == native.BiometryNone {
		return unlock.NotAvailable{}, nil
	}
	kind := s.kind(biometry)

	stored, err := s.Store.Get(EnrollmentAccount)
	if errors.Is(err, native.ErrNotFound) {
		return unlock.Available{Kind: kind, Enabled: false, HasValidIntegrity: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read biometric unlock state: %w", err)
	}

	current, err := s.Auth.DomainState()
	if err != nil {
		// Without the current enrollment the stored one cannot be confirmed.
		return unlock.Available{Kind: kind, Enabled: true, HasValidIntegrity: false}, nil
	}
	return unlock.Available{Kind: kind, Enabled: true, HasValidIntegrity: bytes.Equal(stored, current)}, nil
}

// SetEnabled turns biometric unlock on or off and returns the resulting
// status. Turning it on requires a successful biometric authentication.
func (s *Service) SetEnabled(ctx context.Context, enabled bool) (unlock.BiometricsStatus, error) {
	if !enabled {
		if err := s.Store.Delete(EnrollmentAccount); err != nil {
			return nil, fmt.Errorf("failed to remove biometric unlock state: %w", err)
		}
		return s.Status(ctx)
	}

	if s.Auth.Biometry() == native.BiometryNone {
		return nil, unlock.ErrBiometricUnavailable
	}
	if err := s.Auth.Authenticate(ctx, s.prompt("Authenticate to turn on biometric unlock")); err != nil {
		return nil, err
	}
	state, err := s.Auth.DomainState()
	if err != nil {
		return nil, fmt.Errorf("failed to read biometric enrollment: %w", err)
	}
	if err := s.Store.Set(EnrollmentAccount, state); err != nil {
		return nil, fmt.Errorf("failed to save biometric unlock state: %w", err)
	}
	return s.Status(ctx)
}

// Authenticate prompts for biometrics to unlock the vault.
func (s *Service) Authenticate(ctx context.Context) error {
	status, err := s.Status(ctx)
	if err != nil {
		return err
	}
	available, ok := status.(unlock.Available)
	switch {
	case !ok:
		return unlock.ErrBiometricUnavailable
	case !available.Enabled:
		return ErrNotEnabled
	case !available.HasValidIntegrity:
		return ErrIntegrityChanged
	}
	return s.Auth.Authenticate(ctx, s.prompt("Authentication required to unlock your vault"))
}

func (s *Service) prompt(fallback string) string {
	if s.Prompt != "" {
		return s.Prompt
	}
	return fallback
}
