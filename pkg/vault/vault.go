package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bonjoski/unlocksmith/pkg/unlock"
)

var (
	ErrLocked         = errors.New("vault is locked")
	ErrNotFound       = errors.New("cipher not found")
	ErrInvalidID      = errors.New("invalid cipher id")
	ErrMethodNotSetUp = errors.New("unlock method is not set up")
	ErrMissingName    = errors.New("cipher name is required")
)

// PINVerifier checks the unlock PIN.
type PINVerifier interface {
	Verify(pin string) error
}

// BiometricAuthenticator prompts for biometric unlock.
type BiometricAuthenticator interface {
	Authenticate(ctx context.Context) error
}

// Options configures a Vault. Timeout locks the vault after that much
// inactivity; zero never locks. OnAutoLock is called when that happens.
type Options struct {
	PIN        PINVerifier
	Biometrics BiometricAuthenticator
	Timeout    time.Duration
	OnAutoLock func()
	Now        func() time.Time
}

// Vault gates access to the cipher store behind an unlock method. It starts
// locked.
type Vault struct {
	store Store
	opts  Options

	mu           sync.Mutex
	unlocked     bool
	lastActivity time.Time
}

func New(store Store, opts Options) *Vault {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Vault{store: store, opts: opts}
}

// Unlock unlocks the vault with method. pin is only used for unlock.PIN.
func (v *Vault) Unlock(ctx context.Context, method unlock.Method, pin string) error {
	if method.IsBiometric() {
		return v.UnlockWithBiometrics(ctx)
	}
	return v.UnlockWithPIN(pin)
}

func (v *Vault) UnlockWithPIN(pin string) error {
	if v.opts.PIN == nil {
		return fmt.Errorf("%w: %s", ErrMethodNotSetUp, unlock.PIN)
	}
	if err := v.opts.PIN.Verify(pin); err != nil {
		return err
	}
	v.markUnlocked()
	return nil
}

func (v *Vault) UnlockWithBiometrics(ctx context.Context) error {
	if v.opts.Biometrics == nil {
		return fmt.Errorf("%w: biometrics", ErrMethodNotSetUp)
	}
	if err := v.opts.Biometrics.Authenticate(ctx); err != nil {
		return err
	}
	v.markUnlocked()
	return nil
}

func (v *Vault) markUnlocked() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unlocked = true
	v.lastActivity = v.opts.Now()
}

func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unlocked = false
}

func (v *Vault) IsLocked() bool {
	v.mu.Lock()
	locked := !v.checkUnlocked()
	v.mu.Unlock()
	return locked
}

// checkUnlocked applies the inactivity timeout. Callers hold v.mu.
func (v *Vault) checkUnlocked() bool {
	if !v.unlocked {
		return false
	}
	now := v.opts.Now()
	if v.opts.Timeout > 0 && now.Sub(v.lastActivity) >= v.opts.Timeout {
		v.unlocked = false
		if v.opts.OnAutoLock != nil {
			go v.opts.OnAutoLock()
		}
		return false
	}
	return true
}

// touch records activity; it returns ErrLocked when the vault is locked.
func (v *Vault) touch() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.checkUnlocked() {
		return ErrLocked
	}
	v.lastActivity = v.opts.Now()
	return nil
}

// Put stores c, assigning an ID to new ciphers, and returns what was stored.
func (v *Vault) Put(c Cipher) (Cipher, error) {
	if err := v.touch(); err != nil {
		return Cipher{}, err
	}
	if c.Name == "" {
		return Cipher{}, ErrMissingName
	}

	now := v.opts.Now().UTC().Round(0)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreationDate.IsZero() {
		c.CreationDate = now
	}
	c.RevisionDate = now

	stored := c.Clone()
	if err := v.store.Put(stored); err != nil {
		return Cipher{}, fmt.Errorf("failed to save cipher: %w", err)
	}
	return stored.Clone(), nil
}

func (v *Vault) Get(id string) (Cipher, error) {
	if err := v.touch(); err != nil {
		return Cipher{}, err
	}
	c, err := v.store.Get(id)
	if err != nil {
		return Cipher{}, err
	}
	return c.Clone(), nil
}

// List returns all ciphers that are not deleted.
func (v *Vault) List() ([]Cipher, error) {
	if err := v.touch(); err != nil {
		return nil, err
	}
	all, err := v.store.List()
	if err != nil {
		return nil, err
	}
	var ciphers []Cipher
	for i := range all {
		if all[i].IsDeleted() {
			continue
		}
		ciphers = append(ciphers, all[i].Clone())
	}
	return ciphers, nil
}

func (v *Vault) Delete(id string) error {
	if err := v.touch(); err != nil {
		return err
	}
	return v.store.Delete(id)
}
