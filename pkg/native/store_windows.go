//go:build windows

package native

import (
	"errors"

	"github.com/danieljoos/wincred"
)

// CredentialStore stores secrets as generic credentials in the Windows
// Credential Manager.
type CredentialStore struct {
	Service string
}

func NewStore(service string) Store {
	return &CredentialStore{Service: service}
}

func (s *CredentialStore) target(account string) string {
	return s.Service + ":" + account
}

func (s *CredentialStore) Set(account string, data []byte) error {
	cred := wincred.NewGenericCredential(s.target(account))
	cred.CredentialBlob = data
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

func (s *CredentialStore) Get(account string) ([]byte, error) {
	cred, err := wincred.GetGenericCredential(s.target(account))
	if err != nil {
		if errors.Is(err, wincred.ErrElementNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cred.CredentialBlob, nil
}

func (s *CredentialStore) Delete(account string) error {
	cred, err := wincred.GetGenericCredential(s.target(account))
	if err != nil {
		if errors.Is(err, wincred.ErrElementNotFound) {
			return nil // Already deleted
		}
		return err
	}
	return cred.Delete()
}
