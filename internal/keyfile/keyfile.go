// Package keyfile reads and writes the local keystore file format
// (version 3 JSON with a lowercase "crypto" section).
//
// Only the shape of the cryptographic parameters is checked. Nothing in
// this package derives keys or decrypts.
package keyfile

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/keymigrate/internal/entities"
)

// Version is the only keyfile version this format accepts
const Version = 3

const (
	cryptoKey = "crypto"
	ivLength  = 16
	macLength = 32
	prfSHA256 = "hmac-sha256"
)

var (
	ErrMalformed          = errors.New("keyfile is not valid JSON")
	ErrMissingField       = errors.New("keyfile field missing")
	ErrInvalidField       = errors.New("keyfile field invalid")
	ErrUnsupportedVersion = errors.New("unsupported keyfile version")
	ErrUnsupportedCipher  = errors.New("unsupported cipher")
	ErrUnsupportedKDF     = errors.New("unsupported key derivation function")
)

type keyFileJSON struct {
	ID      string      `json:"id"`
	Version int         `json:"version"`
	Address string      `json:"address,omitempty"`
	Crypto  *cryptoJSON `json:"-"`
}

type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherParams cipherParamsJSON `json:"cipherparams"`
	CipherText   string           `json:"ciphertext"`
	KDF          string           `json:"kdf"`
	KDFParams    json.RawMessage  `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

type cipherParamsJSON struct {
	IV string `json:"iv"`
}

type scryptParamsJSON struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

type pbkdf2ParamsJSON struct {
	C     int    `json:"c"`
	DKLen int    `json:"dklen"`
	PRF   string `json:"prf"`
	Salt  string `json:"salt"`
}

// Load validates an already-decoded JSON object as a local keyfile.
func Load(obj map[string]any) (*entities.KeyRecord, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return Parse(data)
}

// Parse decodes and validates keyfile JSON.
func Parse(data []byte) (*entities.KeyRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// encoding/json matches struct fields case-insensitively; keyfile keys must be exact
	var raw keyFileJSON
	if err := decodeField(fields, "version", &raw.Version); err != nil {
		return nil, err
	}
	if err := decodeField(fields, "id", &raw.ID); err != nil {
		return nil, err
	}
	if err := decodeField(fields, "address", &raw.Address); err != nil {
		return nil, err
	}
	if section, ok := fields[cryptoKey]; ok && string(section) != "null" {
		raw.Crypto = &cryptoJSON{}
		if err := json.Unmarshal(section, raw.Crypto); err != nil {
			return nil, fmt.Errorf("%w: crypto: %v", ErrInvalidField, err)
		}
	}

	if raw.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}

	if raw.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	id, err := uuid.Parse(raw.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrInvalidField, err)
	}

	record := &entities.KeyRecord{
		ID:      id,
		Version: raw.Version,
	}

	if raw.Address != "" {
		addr, err := entities.ParseAddress(raw.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: address: %v", ErrInvalidField, err)
		}
		record.Address = addr
	}

	if raw.Crypto == nil {
		return nil, fmt.Errorf("%w: crypto", ErrMissingField)
	}
	params, err := parseCrypto(raw.Crypto)
	if err != nil {
		return nil, err
	}
	record.Crypto = *params

	return record, nil
}

// decodeField decodes fields[name] into dst. An absent or null field leaves
// dst untouched.
func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	value, ok := fields[name]
	if !ok || string(value) == "null" {
		return nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, name, err)
	}
	return nil
}

func parseCrypto(c *cryptoJSON) (*entities.CryptoParams, error) {
	if !strings.EqualFold(c.Cipher, entities.CipherAES128CTR) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCipher, c.Cipher)
	}

	iv, err := decodeHexField("crypto.cipherparams.iv", c.CipherParams.IV, ivLength)
	if err != nil {
		return nil, err
	}
	cipherText, err := decodeHexField("crypto.ciphertext", c.CipherText, 0)
	if err != nil {
		return nil, err
	}
	mac, err := decodeHexField("crypto.mac", c.MAC, macLength)
	if err != nil {
		return nil, err
	}

	params := &entities.CryptoParams{
		Cipher:       entities.CipherAES128CTR,
		CipherParams: entities.CipherParams{IV: iv},
		CipherText:   cipherText,
		KDF:          strings.ToLower(c.KDF),
		MAC:          mac,
	}

	if len(c.KDFParams) == 0 {
		return nil, fmt.Errorf("%w: crypto.kdfparams", ErrMissingField)
	}

	switch params.KDF {
	case entities.KDFScrypt:
		scrypt, err := parseScrypt(c.KDFParams)
		if err != nil {
			return nil, err
		}
		params.Scrypt = scrypt
	case entities.KDFPBKDF2:
		pbkdf2, err := parsePBKDF2(c.KDFParams)
		if err != nil {
			return nil, err
		}
		params.PBKDF2 = pbkdf2
	case "":
		return nil, fmt.Errorf("%w: crypto.kdf", ErrMissingField)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, c.KDF)
	}

	return params, nil
}

func parseScrypt(data json.RawMessage) (*entities.ScryptParams, error) {
	var p scryptParamsJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: crypto.kdfparams: %v", ErrInvalidField, err)
	}

	// n must be a power of two greater than one
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return nil, fmt.Errorf("%w: crypto.kdfparams.n = %d", ErrInvalidField, p.N)
	}
	if p.R <= 0 || p.P <= 0 || p.DKLen <= 0 {
		return nil, fmt.Errorf("%w: crypto.kdfparams r/p/dklen must be positive", ErrInvalidField)
	}

	salt, err := decodeHexField("crypto.kdfparams.salt", p.Salt, 0)
	if err != nil {
		return nil, err
	}

	return &entities.ScryptParams{DKLen: p.DKLen, N: p.N, R: p.R, P: p.P, Salt: salt}, nil
}

func parsePBKDF2(data json.RawMessage) (*entities.PBKDF2Params, error) {
	var p pbkdf2ParamsJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: crypto.kdfparams: %v", ErrInvalidField, err)
	}

	if p.C <= 0 || p.DKLen <= 0 {
		return nil, fmt.Errorf("%w: crypto.kdfparams c/dklen must be positive", ErrInvalidField)
	}
	if !strings.EqualFold(p.PRF, prfSHA256) {
		return nil, fmt.Errorf("%w: prf %q", ErrUnsupportedKDF, p.PRF)
	}

	salt, err := decodeHexField("crypto.kdfparams.salt", p.Salt, 0)
	if err != nil {
		return nil, err
	}

	return &entities.PBKDF2Params{C: p.C, DKLen: p.DKLen, PRF: prfSHA256, Salt: salt}, nil
}

// decodeHexField decodes a required hex field. wantLen of 0 accepts any
// non-empty length.
func decodeHexField(name, value string, wantLen int) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidField, name, err)
	}

	if wantLen > 0 && len(b) != wantLen {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrInvalidField, name, len(b), wantLen)
	}

	return b, nil
}

// Marshal encodes a record in the local keyfile format.
func Marshal(record *entities.KeyRecord) ([]byte, error) {
	if record == nil {
		return nil, errors.New("keyfile: nil record")
	}

	c := record.Crypto
	out := keyFileJSON{
		ID:      record.ID.String(),
		Version: record.Version,
		Crypto: &cryptoJSON{
			Cipher:       c.Cipher,
			CipherParams: cipherParamsJSON{IV: hex.EncodeToString(c.CipherParams.IV)},
			CipherText:   hex.EncodeToString(c.CipherText),
			KDF:          c.KDF,
			MAC:          hex.EncodeToString(c.MAC),
		},
	}
	if !record.Address.IsZero() {
		out.Address = record.Address.String()
	}

	var (
		kdfParams []byte
		err       error
	)
	switch {
	case c.Scrypt != nil:
		kdfParams, err = json.Marshal(scryptParamsJSON{
			DKLen: c.Scrypt.DKLen,
			N:     c.Scrypt.N,
			R:     c.Scrypt.R,
			P:     c.Scrypt.P,
			Salt:  hex.EncodeToString(c.Scrypt.Salt),
		})
	case c.PBKDF2 != nil:
		kdfParams, err = json.Marshal(pbkdf2ParamsJSON{
			C:     c.PBKDF2.C,
			DKLen: c.PBKDF2.DKLen,
			PRF:   c.PBKDF2.PRF,
			Salt:  hex.EncodeToString(c.PBKDF2.Salt),
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, c.KDF)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal kdf params: %w", err)
	}
	out.Crypto.KDFParams = kdfParams

	return json.Marshal(struct {
		keyFileJSON
		Crypto *cryptoJSON `json:"crypto"`
	}{out, out.Crypto})
}
