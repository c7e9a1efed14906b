// Package pin stores and verifies the vault unlock PIN.
package pin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/bonjoski/unlocksmith/pkg/native"
)

const (
	Account = "pin-unlock"

	DefaultMinLength   = 4
	DefaultMaxAttempts = 5
)

var (
	ErrNotSet          = errors.New("no PIN is set")
	ErrMismatch        = errors.New("incorrect PIN")
	ErrTooShort        = errors.New("PIN is too short")
	ErrTooManyAttempts = errors.New("too many incorrect PIN attempts; PIN unlock has been turned off")
)

// hash is the stored form of a PIN.
type hash struct {
	Salt    []byte `json:"salt"`
	Hash    []byte `json:"hash"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
}

// Params are the argon2id parameters for new PINs.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4}

// Service manages the PIN. After MaxAttempts consecutive failed
// verifications the PIN is cleared.
type Service struct {
	Store       native.Store
	MinLength   int
	MaxAttempts int
	Params      Params

	mu       sync.Mutex
	failures int
}

func New(store native.Store) *Service {
	return &Service{
		Store:       store,
		MinLength:   DefaultMinLength,
		MaxAttempts: DefaultMaxAttempts,
		Params:      DefaultParams,
	}
}

func (s *Service) SetPIN(pin string) error {
	if len(pin) < s.MinLength {
		return fmt.Errorf("%w: need at least %d characters", ErrTooShort, s.MinLength)
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	h := hash{
		Salt:    salt,
		Time:    s.Params.Time,
		Memory:  s.Params.Memory,
		Threads: s.Params.Threads,
	}
	h.Hash = h.derive(pin)

	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := s.Store.Set(Account, data); err != nil {
		return fmt.Errorf("failed to save PIN: %w", err)
	}

	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
	return nil
}

func (h hash) derive(pin string) []byte {
	return argon2.IDKey([]byte(pin), h.Salt, h.Time, h.Memory, h.Threads, 32)
}

func (s *Service) IsPINSet(ctx context.Context) (bool, error) {
	_, err := s.Store.Get(Account)
	if errors.Is(err, native.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read PIN: %w", err)
	}
	return true, nil
}

func (s *Service) Verify(pin string) error {
	data, err := s.Store.Get(Account)
	if errors.Is(err, native.ErrNotFound) {
		return ErrNotSet
	}
	if err != nil {
		return fmt.Errorf("failed to read PIN: %w", err)
	}

	var h hash
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("failed to decode stored PIN: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if subtle.ConstantTimeCompare(h.derive(pin), h.Hash) == 1 {
		s.failures = 0
		return nil
	}

	s.failures++
	if s.MaxAttempts > 0 && s.failures >= s.MaxAttempts {
		s.failures = 0
		if err := s.Store.Delete(Account); err != nil {
			return fmt.Errorf("failed to clear PIN: %w", err)
		}
		return ErrTooManyAttempts
	}
	return ErrMismatch
}

// Remaining returns how many attempts are left before the PIN is cleared.
func (s *Service) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MaxAttempts - s.failures
}

func (s *Service) Clear() error {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
	return s.Store.Delete(Account)
}
