package types

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
	"fmt"
)

const (
	// AddressByteLength is the length of the raw public key.
	AddressByteLength = 32

	checksumByteLength = 4

	// AddressStringLength is the length of the checksummed textual form.
	AddressStringLength = 58
)

// Address is a 32-byte ed25519 public key. Its textual form appends a 4-byte
// SHA-512/256 checksum and encodes the result in unpadded base32.
type Address [AddressByteLength]byte

// ZeroAddress is the all-zero address, used by the protocol as "no address".
var ZeroAddress = Address{}

var base32Encoder = base32.StdEncoding.WithPadding(base32.NoPadding)

// IsZero returns true for the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) checksum() []byte {
	hash := sha512.Sum512_256(a[:])
	return hash[DigestByteLength-checksumByteLength:]
}

// String returns the checksummed base32 form of the address.
func (a Address) String() string {
	checksummed := make([]byte, 0, AddressByteLength+checksumByteLength)
	checksummed = append(checksummed, a[:]...)
	checksummed = append(checksummed, a.checksum()...)
	return base32Encoder.EncodeToString(checksummed)
}

// MarshalText returns the address string as bytes.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText initializes the address from its checksummed base32 form.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// DecodeAddress parses the checksummed base32 form of an address and
// verifies its checksum.
func DecodeAddress(addr string) (Address, error) {
	if len(addr) != AddressStringLength {
		return Address{}, InvalidFieldError{
			Field:  "address",
			Reason: fmt.Sprintf("expected %d characters, got %d", AddressStringLength, len(addr)),
		}
	}

	decoded, err := base32Encoder.DecodeString(addr)
	if err != nil {
		return Address{}, InvalidFieldError{Field: "address", Reason: err.Error()}
	}
	if len(decoded) != AddressByteLength+checksumByteLength {
		return Address{}, InvalidFieldError{
			Field:  "address",
			Reason: fmt.Sprintf("wrong decoded length %d", len(decoded)),
		}
	}

	var a Address
	copy(a[:], decoded[:AddressByteLength])
	if !bytes.Equal(a.checksum(), decoded[AddressByteLength:]) {
		return Address{}, InvalidFieldError{Field: "address", Reason: "checksum mismatch"}
	}
	return a, nil
}

// AddressFromPublicKey builds an address from a raw 32-byte public key.
func AddressFromPublicKey(pk []byte) (Address, error) {
	if len(pk) != AddressByteLength {
		return Address{}, InvalidFieldError{
			Field:  "public key",
			Reason: fmt.Sprintf("expected %d bytes, got %d", AddressByteLength, len(pk)),
		}
	}
	var a Address
	copy(a[:], pk)
	return a, nil
}
