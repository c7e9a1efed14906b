// Package vaulttest builds vault values with default fields for tests. Each
// builder takes optional mutators that run after the defaults are set.
package vaulttest

import (
	"time"

	"github.com/bonjoski/unlocksmith/pkg/vault"
)

var (
	// CipherDate is the default creation and revision date of Cipher.
	CipherDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// ViewDate is the default date of the login and card fixtures.
	ViewDate = time.Date(2023, 11, 5, 9, 41, 0, 0, time.UTC)
	// PasskeyDate is the default creation date of Fido2Credential.
	PasskeyDate = time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC)
)

func apply[T any](v *T, opts []func(*T)) {
	for _, opt := range opts {
		opt(v)
	}
}

func Cipher(opts ...func(*vault.Cipher)) vault.Cipher {
	c := vault.Cipher{
		Name:         "Bitwarden",
		Type:         vault.CipherTypeLogin,
		Edit:         true,
		ViewPassword: true,
		CreationDate: CipherDate,
		RevisionDate: CipherDate,
	}
	apply(&c, opts)
	return c
}

func LoginCipher(opts ...func(*vault.Cipher)) vault.Cipher {
	c := Cipher(func(c *vault.Cipher) {
		c.ID = "8675"
		c.Type = vault.CipherTypeLogin
		c.Login = Login()
		c.CreationDate = ViewDate
		c.RevisionDate = ViewDate
	})
	apply(&c, opts)
	return c
}

func CardCipher(opts ...func(*vault.Cipher)) vault.Cipher {
	c := Cipher(func(c *vault.Cipher) {
		c.ID = "8675"
		c.Type = vault.CipherTypeCard
		c.Card = Card()
		c.CreationDate = ViewDate
		c.RevisionDate = ViewDate
	})
	apply(&c, opts)
	return c
}

func Login(opts ...func(*vault.Login)) *vault.Login {
	l := &vault.Login{}
	apply(l, opts)
	return l
}

func Card(opts ...func(*vault.Card)) *vault.Card {
	c := &vault.Card{}
	apply(c, opts)
	return c
}

func Collection(opts ...func(*vault.Collection)) vault.Collection {
	c := vault.Collection{ID: "collection-view-1"}
	apply(&c, opts)
	return c
}

func Fido2Credential(opts ...func(*vault.Fido2Credential)) vault.Fido2Credential {
	f := vault.Fido2Credential{CreationDate: PasskeyDate}
	apply(&f, opts)
	return f
}

func Attachment(opts ...func(*vault.Attachment)) vault.Attachment {
	a := vault.Attachment{ID: "1"}
	apply(&a, opts)
	return a
}

func PasswordHistory(opts ...func(*vault.PasswordHistory)) vault.PasswordHistory {
	p := vault.PasswordHistory{LastUsedDate: CipherDate}
	apply(&p, opts)
	return p
}

func WithID(id string) func(*vault.Cipher) {
	return func(c *vault.Cipher) { c.ID = id }
}

func WithName(name string) func(*vault.Cipher) {
	return func(c *vault.Cipher) { c.Name = name }
}

func WithCredentials(username, password string) func(*vault.Cipher) {
	return func(c *vault.Cipher) {
		if c.Login == nil {
			c.Login = Login()
		}
		c.Login.Username = username
		c.Login.Password = password
	}
}

func WithDeletedDate(t time.Time) func(*vault.Cipher) {
	return func(c *vault.Cipher) { c.DeletedDate = &t }
}
