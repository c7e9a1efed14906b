package vault_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bonjoski/unlocksmith/pkg/vault"
	"github.com/bonjoski/unlocksmith/pkg/vault/vaulttest"
)

func TestCipherFixtureDefaults(t *testing.T) {
	c := vaulttest.Cipher()
	require.Equal(t, "Bitwarden", c.Name)
	require.Equal(t, vault.CipherTypeLogin, c.Type)
	require.True(t, c.Edit)
	require.True(t, c.ViewPassword)
	require.Equal(t, vault.RepromptNone, c.Reprompt)
	require.False(t, c.IsDeleted())

	login := vaulttest.LoginCipher()
	require.Equal(t, "8675", login.ID)
	require.NotNil(t, login.Login)
	require.Equal(t, vaulttest.ViewDate, login.RevisionDate)

	card := vaulttest.CardCipher()
	require.Equal(t, vault.CipherTypeCard, card.Type)
	require.NotNil(t, card.Card)
	require.Nil(t, card.Login)

	require.Equal(t, "collection-view-1", vaulttest.Collection().ID)
	require.Equal(t, "1", vaulttest.Attachment().ID)
	require.Equal(t, vaulttest.PasskeyDate, vaulttest.Fido2Credential().CreationDate)
}

func TestIsDeleted(t *testing.T) {
	c := vaulttest.Cipher(vaulttest.WithDeletedDate(time.Now()))
	require.True(t, c.IsDeleted())
}

func TestHasPasskeys(t *testing.T) {
	require.False(t, vaulttest.Cipher().HasPasskeys())
	require.False(t, vaulttest.LoginCipher().HasPasskeys())

	c := vaulttest.LoginCipher(func(c *vault.Cipher) {
		c.Login.Fido2Credentials = []vault.Fido2Credential{
			vaulttest.Fido2Credential(func(f *vault.Fido2Credential) { f.RPID = "example.com" }),
		}
	})
	require.True(t, c.HasPasskeys())
}

func TestPrimaryURI(t *testing.T) {
	require.Equal(t, "", vaulttest.Login().PrimaryURI())

	match := vault.URIMatchHost
	login := vaulttest.Login(func(l *vault.Login) {
		l.URIs = []vault.LoginURI{{URI: "https://example.com", Match: &match}, {URI: "https://other.com"}}
	})
	require.Equal(t, "https://example.com", login.PrimaryURI())
}

func TestMaskedNumber(t *testing.T) {
	tests := []struct {
		number   string
		expected string
	}{
		{"4111111111111111", "************1111"},
		{"1234", "1234"},
		{"", ""},
	}

	for _, tt := range tests {
		card := vaulttest.Card(func(c *vault.Card) { c.Number = tt.number })
		require.Equal(t, tt.expected, card.MaskedNumber())
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := vaulttest.LoginCipher(
		vaulttest.WithCredentials("user", "secret"),
		vaulttest.WithDeletedDate(vaulttest.CipherDate),
		func(c *vault.Cipher) {
			c.CollectionIDs = []string{"c1"}
			c.PasswordHistory = []vault.PasswordHistory{vaulttest.PasswordHistory(func(p *vault.PasswordHistory) { p.Password = "old" })}
		},
	)

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Login.Password = "changed"
	clone.CollectionIDs[0] = "c2"
	clone.PasswordHistory[0].Password = "changed"
	*clone.DeletedDate = time.Now()

	require.Equal(t, "secret", original.Login.Password)
	require.Equal(t, "c1", original.CollectionIDs[0])
	require.Equal(t, "old", original.PasswordHistory[0].Password)
	require.Equal(t, vaulttest.CipherDate, *original.DeletedDate)
}
