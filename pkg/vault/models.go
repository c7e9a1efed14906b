package vault

import (
	"strings"
	"time"
)

type CipherType int

const (
	CipherTypeLogin CipherType = iota + 1
	CipherTypeSecureNote
	CipherTypeCard
	CipherTypeIdentity
)

func (t CipherType) String() string {
	switch t {
	case CipherTypeLogin:
		return "login"
	case CipherTypeSecureNote:
		return "secure-note"
	case CipherTypeCard:
		return "card"
	case CipherTypeIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

// RepromptType says whether viewing a cipher asks for the unlock method again.
type RepromptType int

const (
	RepromptNone RepromptType = iota
	RepromptPassword
)

type URIMatchType int

const (
	URIMatchDomain URIMatchType = iota
	URIMatchHost
	URIMatchStartsWith
	URIMatchExact
	URIMatchRegex
	URIMatchNever
)

type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeHidden
	FieldTypeBoolean
	FieldTypeLinked
)

type Cipher struct {
	ID                  string            `json:"id"`
	OrganizationID      string            `json:"organization_id,omitempty"`
	FolderID            string            `json:"folder_id,omitempty"`
	CollectionIDs       []string          `json:"collection_ids,omitempty"`
	Key                 string            `json:"key,omitempty"`
	Name                string            `json:"name"`
	Notes               string            `json:"notes,omitempty"`
	Type                CipherType        `json:"type"`
	Login               *Login            `json:"login,omitempty"`
	Card                *Card             `json:"card,omitempty"`
	SecureNote          *SecureNote       `json:"secure_note,omitempty"`
	Favorite            bool              `json:"favorite"`
	Reprompt            RepromptType      `json:"reprompt"`
	OrganizationUseTOTP bool              `json:"organization_use_totp"`
	Edit                bool              `json:"edit"`
	ViewPassword        bool              `json:"view_password"`
	Attachments         []Attachment      `json:"attachments,omitempty"`
	Fields              []Field           `json:"fields,omitempty"`
	PasswordHistory     []PasswordHistory `json:"password_history,omitempty"`
	CreationDate        time.Time         `json:"creation_date"`
	DeletedDate         *time.Time        `json:"deleted_date,omitempty"`
	RevisionDate        time.Time         `json:"revision_date"`
}

func (c Cipher) IsDeleted() bool {
	return c.DeletedDate != nil
}

func (c Cipher) HasPasskeys() bool {
	return c.Login != nil && len(c.Login.Fido2Credentials) > 0
}

// Clone returns a deep copy so callers cannot modify stored values.
func (c *Cipher) Clone() Cipher {
	out := *c
	out.CollectionIDs = append([]string(nil), c.CollectionIDs...)
	if c.Login != nil {
		login := *c.Login
		login.URIs = append([]LoginURI(nil), c.Login.URIs...)
		login.Fido2Credentials = append([]Fido2Credential(nil), c.Login.Fido2Credentials...)
		out.Login = &login
	}
	if c.Card != nil {
		card := *c.Card
		out.Card = &card
	}
	if c.SecureNote != nil {
		note := *c.SecureNote
		out.SecureNote = &note
	}
	out.Attachments = append([]Attachment(nil), c.Attachments...)
	out.Fields = append([]Field(nil), c.Fields...)
	out.PasswordHistory = append([]PasswordHistory(nil), c.PasswordHistory...)
	if c.DeletedDate != nil {
		deleted := *c.DeletedDate
		out.DeletedDate = &deleted
	}
	return out
}

type Login struct {
	Username             string            `json:"username,omitempty"`
	Password             string            `json:"password,omitempty"`
	PasswordRevisionDate *time.Time        `json:"password_revision_date,omitempty"`
	URIs                 []LoginURI        `json:"uris,omitempty"`
	TOTP                 string            `json:"totp,omitempty"`
	AutofillOnPageLoad   *bool             `json:"autofill_on_page_load,omitempty"`
	Fido2Credentials     []Fido2Credential `json:"fido2_credentials,omitempty"`
}

// PrimaryURI returns the first URI, or "" when there is none.
func (l *Login) PrimaryURI() string {
	if len(l.URIs) == 0 {
		return ""
	}
	return l.URIs[0].URI
}

type LoginURI struct {
	URI   string        `json:"uri"`
	Match *URIMatchType `json:"match,omitempty"`
}

type Card struct {
	CardholderName string `json:"cardholder_name,omitempty"`
	ExpMonth       string `json:"exp_month,omitempty"`
	ExpYear        string `json:"exp_year,omitempty"`
	Code           string `json:"code,omitempty"`
	Brand          string `json:"brand,omitempty"`
	Number         string `json:"number,omitempty"`
}

// MaskedNumber keeps the last four digits of the card number.
func (c *Card) MaskedNumber() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return strings.Repeat("*", len(c.Number)-4) + c.Number[len(c.Number)-4:]
}

type SecureNote struct {
	Type int `json:"type"`
}

type Collection struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	ExternalID     string `json:"external_id,omitempty"`
	HidePasswords  bool   `json:"hide_passwords"`
	ReadOnly       bool   `json:"read_only"`
}

type Fido2Credential struct {
	CredentialID    string    `json:"credential_id"`
	KeyType         string    `json:"key_type"`
	KeyAlgorithm    string    `json:"key_algorithm"`
	KeyCurve        string    `json:"key_curve"`
	KeyValue        string    `json:"key_value"`
	RPID            string    `json:"rp_id"`
	UserHandle      string    `json:"user_handle,omitempty"`
	UserName        string    `json:"user_name,omitempty"`
	Counter         string    `json:"counter"`
	RPName          string    `json:"rp_name,omitempty"`
	UserDisplayName string    `json:"user_display_name,omitempty"`
	Discoverable    string    `json:"discoverable"`
	CreationDate    time.Time `json:"creation_date"`
}

type Attachment struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	Size     string `json:"size,omitempty"`
	SizeName string `json:"size_name,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Key      string `json:"key,omitempty"`
}

type Field struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Type     FieldType `json:"type"`
	LinkedID *int      `json:"linked_id,omitempty"`
}

type PasswordHistory struct {
	Password     string    `json:"password"`
	LastUsedDate time.Time `json:"last_used_date"`
}
