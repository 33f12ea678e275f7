// Package util provides small encoding helpers shared across the SDK.
package util

import (
	"fmt"
	"math/big"
)

// OverflowError is returned when a value cannot be represented in the
// requested number of bytes.
type OverflowError struct {
	Value *big.Int
	Width int
}

func (e OverflowError) Error() string {
	return fmt.Sprintf("value %s does not fit in %d bytes", e.Value.String(), e.Width)
}

// IntToFixedBytes encodes a non-negative arbitrary-precision integer as
// big-endian bytes, left-padded with zeros to exactly width bytes. This is
// the primitive behind ABI uint<N> and ufixed<NxM> encoding.
func IntToFixedBytes(v *big.Int, width int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("cannot encode negative value %s", v.String())
	}
	if (v.BitLen()+7)/8 > width {
		return nil, OverflowError{Value: new(big.Int).Set(v), Width: width}
	}
	buf := make([]byte, width)
	v.FillBytes(buf)
	return buf, nil
}

// Uint64ToFixedBytes is IntToFixedBytes for the common machine-word case.
func Uint64ToFixedBytes(v uint64, width int) ([]byte, error) {
	return IntToFixedBytes(new(big.Int).SetUint64(v), width)
}

// FixedBytesToInt parses big-endian bytes into an arbitrary-precision
// integer. It is the left inverse of IntToFixedBytes.
func FixedBytesToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
