package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists ciphers.
type Store interface {
	Put(c Cipher) error
	Get(id string) (*Cipher, error)
	Delete(id string) error
	List() ([]Cipher, error)
}

// DiskStore keeps one AES-GCM encrypted file per cipher.
type DiskStore struct {
	Dir       string
	MasterKey []byte
}

func NewDiskStore(dir string, masterKey []byte) (*DiskStore, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("invalid master key length: expected 32 bytes, got %d", len(masterKey))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir, MasterKey: masterKey}, nil
}

func (s *DiskStore) validatePath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	}
	// Hidden files hold temporary writes and are never listed.
	if strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q starts with a dot", ErrInvalidID, id)
	}
	path := filepath.Join(s.Dir, filepath.Clean(id))
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", err
	}
	if filepath.Dir(absPath) != absDir {
		return "", fmt.Errorf("%w: security: path traversal attempt detected", ErrInvalidID)
	}
	return path, nil
}

func (s *DiskStore) Put(c Cipher) error {
	path, err := s.validatePath(c.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	encrypted, err := s.encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt cipher: %w", err)
	}

	return writeFileAtomic(path, encrypted)
}

// writeFileAtomic writes through a hidden temp file so readers never see a
// partial cipher.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *DiskStore) Get(id string) (*Cipher, error) {
	path, err := s.validatePath(id)
	if err != nil {
		return nil, err
	}
	return s.read(path)
}

func (s *DiskStore) read(path string) (*Cipher, error) {
	encrypted, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	data, err := s.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt cipher: %w", err)
	}

	var c Cipher
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *DiskStore) List() ([]Cipher, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var ciphers []Cipher
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		c, err := s.read(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read cipher %s: %w", entry.Name(), err)
		}
		ciphers = append(ciphers, *c)
	}

	sort.Slice(ciphers, func(i, j int) bool {
		if ciphers[i].Name != ciphers[j].Name {
			return ciphers[i].Name < ciphers[j].Name
		}
		return ciphers[i].ID < ciphers[j].ID
	})
	return ciphers, nil
}

func (s *DiskStore) Delete(id string) error {
	path, err := s.validatePath(id)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStore) encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.MasterKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *DiskStore) decrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.MasterKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("data too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
