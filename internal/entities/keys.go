package entities

import (
	"time"

	"github.com/google/uuid"
)

// KDF names understood by the local keystore format
const (
	KDFScrypt = "scrypt"
	KDFPBKDF2 = "pbkdf2"
)

// CipherAES128CTR is the only symmetric cipher the local keystore format accepts
const CipherAES128CTR = "aes-128-ctr"

// KeyRecord is a validated encrypted key in the local keystore format.
// Records are produced by the keyfile loader; nothing else builds them.
type KeyRecord struct {
	ID      uuid.UUID
	Version int
	Address Address
	Crypto  CryptoParams
}

// CryptoParams holds the opaque encryption parameters of a key.
// Hex fields are kept as decoded bytes; nothing here is ever decrypted.
type CryptoParams struct {
	Cipher       string
	CipherParams CipherParams
	CipherText   []byte
	KDF          string
	Scrypt       *ScryptParams
	PBKDF2       *PBKDF2Params
	MAC          []byte
}

type CipherParams struct {
	IV []byte
}

type ScryptParams struct {
	DKLen int
	N     int
	R     int
	P     int
	Salt  []byte
}

type PBKDF2Params struct {
	C     int
	DKLen int
	PRF   string
	Salt  []byte
}

// StoredKey is the persisted row for an imported key.
type StoredKey struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// KeyID is the keyfile's UUID
	KeyID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"key_id"`

	// Address is lowercase hex without prefix
	Address string `gorm:"type:varchar(40);not null;index" json:"address"`

	Version int `gorm:"not null" json:"version"`

	// Payload is the local keyfile JSON, sealed with AES-256-GCM when the
	// store has an encryption key
	Payload []byte `gorm:"not null" json:"-"`

	Sealed bool `gorm:"not null;default:false" json:"sealed"`
}

// TableName specifies the table name for GORM
func (StoredKey) TableName() string {
	return "stored_keys"
}
