// Package nativetest provides in-memory stand-ins for the native bridge.
package nativetest

import (
	"context"
	"sync"

	"github.com/bonjoski/unlocksmith/pkg/native"
)

// MemoryStore is a native.Store backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string][]byte
	Err     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string][]byte)}
}

func (m *MemoryStore) Set(account string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.secrets[account] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(account string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	data, ok := m.secrets[account]
	if !ok {
		return nil, native.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Delete(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.secrets, account)
	return nil
}

// Authenticator is a scriptable native.Authenticator.
type Authenticator struct {
	mu      sync.Mutex
	Kind    native.Biometry
	State   []byte
	Err     error
	Prompts []string
	Block   chan struct{}
}

func (a *Authenticator) Biometry() native.Biometry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Kind
}

func (a *Authenticator) DomainState() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Kind == native.BiometryNone {
		return nil, native.ErrNoBiometry
	}
	return append([]byte(nil), a.State...), nil
}

func (a *Authenticator) Authenticate(ctx context.Context, prompt string) error {
	a.mu.Lock()
	a.Prompts = append(a.Prompts, prompt)
	block := a.Block
	a.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Kind == native.BiometryNone {
		return native.ErrNoBiometry
	}
	return a.Err
}

// Reenroll changes the enrollment fingerprint, as adding a finger would.
func (a *Authenticator) Reenroll(state []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.State = state
}

// SetErr changes the result of later Authenticate calls.
func (a *Authenticator) SetErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Err = err
}
