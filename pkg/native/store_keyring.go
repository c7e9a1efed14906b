//go:build !windows

package native

import (
	"encoding/base64"
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringStore stores secrets with go-keyring: the macOS keychain or the
// Secret Service on Linux.
type KeyringStore struct {
	Service string
}

func NewStore(service string) Store {
	return &KeyringStore{Service: service}
}

func (s *KeyringStore) Set(account string, data []byte) error {
	return keyring.Set(s.Service, account, base64.StdEncoding.EncodeToString(data))
}

func (s *KeyringStore) Get(account string) ([]byte, error) {
	encoded, err := keyring.Get(s.Service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *KeyringStore) Delete(account string) error {
	err := keyring.Delete(s.Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil // Already deleted
	}
	return err
}
