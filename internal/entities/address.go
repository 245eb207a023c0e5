package entities

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the size of an account address in bytes
const AddressLength = 20

var ErrInvalidAddress = errors.New("invalid account address")

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

// ParseAddress decodes a hex address. Case is ignored and a leading
// 0x/0X prefix is optional.
func ParseAddress(s string) (Address, error) {
	var addr Address

	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}

	if len(trimmed) != AddressLength*2 {
		return addr, fmt.Errorf("%w: %q has %d hex characters, want %d", ErrInvalidAddress, s, len(trimmed), AddressLength*2)
	}

	if _, err := hex.Decode(addr[:], []byte(trimmed)); err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}

	return addr, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns lowercase hex without a prefix, the form used in keystore filenames.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Hex returns the 0x-prefixed EIP-55 checksummed form.
func (a Address) Hex() string {
	lower := []byte(a.String())

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(lower)
	hash := hasher.Sum(nil)

	for i, c := range lower {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			lower[i] = c - 32
		}
	}

	return "0x" + string(lower)
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}
