package util

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToFixedBytes(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		width    int
		expected []byte
	}{
		{"zero", big.NewInt(0), 4, []byte{0, 0, 0, 0}},
		{"one byte", big.NewInt(0xab), 1, []byte{0xab}},
		{"left padded", big.NewInt(0x01ff), 4, []byte{0, 0, 1, 0xff}},
		{"exact fit", big.NewInt(0xffff), 2, []byte{0xff, 0xff}},
		{"uint64 max", new(big.Int).SetUint64(^uint64(0)), 8, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := IntToFixedBytes(tc.value, tc.width)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
			// round trip
			assert.Zero(t, tc.value.Cmp(FixedBytesToInt(b)))
		})
	}
}

func TestIntToFixedBytesOverflow(t *testing.T) {
	// fails iff v >= 2^(8w)
	_, err := IntToFixedBytes(big.NewInt(256), 1)
	require.Error(t, err)
	var overflow OverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 1, overflow.Width)

	_, err = IntToFixedBytes(big.NewInt(255), 1)
	require.NoError(t, err)

	big257 := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = IntToFixedBytes(big257, 32)
	require.Error(t, err)
	_, err = IntToFixedBytes(new(big.Int).Sub(big257, big.NewInt(1)), 32)
	require.NoError(t, err)
}

func TestIntToFixedBytesNegative(t *testing.T) {
	_, err := IntToFixedBytes(big.NewInt(-1), 4)
	require.Error(t, err)
}

func TestUint64ToFixedBytes(t *testing.T) {
	b, err := Uint64ToFixedBytes(1000, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x03, 0xe8}, b)
}
