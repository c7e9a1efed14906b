package unlocksmith

import (
	"context"
	"errors"

	"github.com/bonjoski/unlocksmith/pkg/unlock"
	"github.com/bonjoski/unlocksmith/pkg/vault"
)

var ErrNoUnlockMethod = errors.New("no unlock method is set up; run `unlocksmith setup`")

// PreferredMethod returns the method to unlock with when none is given:
// biometrics when it is on, otherwise PIN when a PIN is set.
func (a *App) PreferredMethod(ctx context.Context) (unlock.Method, error) {
	status, err := a.Biometrics.Status(ctx)
	if err != nil {
		return unlock.Method{}, err
	}
	state := unlock.SetupState{BiometricsStatus: status}
	if state.IsBiometricUnlockOn() {
		return unlock.Biometrics(status.(unlock.Available).Kind), nil
	}

	pinSet, err := a.PIN.IsPINSet(ctx)
	if err != nil {
		return unlock.Method{}, err
	}
	if pinSet {
		return unlock.PIN, nil
	}
	return unlock.Method{}, ErrNoUnlockMethod
}

// Find returns the cipher with the given ID, or else the first one with
// that name.
func (a *App) Find(ref string) (vault.Cipher, error) {
	c, err := a.Vault.Get(ref)
	if err == nil {
		return c, nil
	}
	// Names such as "github.com/me" are not valid IDs.
	if !errors.Is(err, vault.ErrNotFound) && !errors.Is(err, vault.ErrInvalidID) {
		return vault.Cipher{}, err
	}

	ciphers, err := a.Vault.List()
	if err != nil {
		return vault.Cipher{}, err
	}
	for _, c := range ciphers {
		if c.Name == ref {
			return c, nil
		}
	}
	return vault.Cipher{}, vault.ErrNotFound
}
