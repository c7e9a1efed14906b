package vaulttest

import (
	"sort"
	"sync"

	"github.com/bonjoski/unlocksmith/pkg/vault"
)

// MemoryStore is a vault.Store backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	ciphers map[string]vault.Cipher
}

// NewMemoryStore returns a store holding seed.
func NewMemoryStore(seed ...vault.Cipher) *MemoryStore {
	m := &MemoryStore{ciphers: make(map[string]vault.Cipher)}
	for _, c := range seed {
		m.ciphers[c.ID] = c.Clone()
	}
	return m
}

func (m *MemoryStore) Put(c vault.Cipher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ciphers[c.ID] = c.Clone()
	return nil
}

func (m *MemoryStore) Get(id string) (*vault.Cipher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.ciphers[id]
	if !ok {
		return nil, vault.ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ciphers, id)
	return nil
}

func (m *MemoryStore) List() ([]vault.Cipher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []vault.Cipher
	for _, c := range m.ciphers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
