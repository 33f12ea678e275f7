package abi

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, name string) Type {
	t.Helper()
	parsed, err := TypeOf(name)
	require.NoError(t, err)
	return parsed
}

func TestEncodeUint(t *testing.T) {
	uint64T := mustType(t, "uint64")

	encoded, err := uint64T.Encode(uint64(255))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 255}, encoded)

	decoded, err := uint64T.Decode(encoded)
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(255).Cmp(decoded.(*big.Int)))

	// overflow
	uint8T := mustType(t, "uint8")
	_, err = uint8T.Encode(uint64(256))
	require.Error(t, err)
	_, err = uint8T.Encode(uint64(255))
	require.NoError(t, err)
}

func TestEncodeUfixed(t *testing.T) {
	ufixedT := mustType(t, "ufixed64x2")
	// 12.34 is represented as 1234
	encoded, err := ufixedT.Encode(big.NewInt(1234))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x04, 0xd2}, encoded)

	decoded, err := ufixedT.Decode(encoded)
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(1234).Cmp(decoded.(*big.Int)))
}

func TestEncodeBoolAndByte(t *testing.T) {
	boolT := mustType(t, "bool")
	encoded, err := boolT.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, encoded)

	encoded, err = boolT.Encode(false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, encoded)

	_, err = boolT.Decode([]byte{0x40})
	require.Error(t, err)

	byteT := mustType(t, "byte")
	encoded, err = byteT.Encode(byte(0xaa))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, encoded)
}

func TestEncodeString(t *testing.T) {
	stringT := mustType(t, "string")
	encoded, err := stringT.Encode("AB")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x02, 'A', 'B'}, encoded)

	decoded, err := stringT.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "AB", decoded)

	// empty string
	encoded, err = stringT.Encode("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, encoded)
}

func TestEncodeAddress(t *testing.T) {
	addressT := mustType(t, "address")
	var addr [32]byte
	addr[0] = 0xde
	addr[31] = 0xad

	encoded, err := addressT.Encode(addr)
	require.NoError(t, err)
	require.Len(t, encoded, 32)

	decoded, err := addressT.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)

	_, err = addressT.Decode(encoded[:31])
	require.Error(t, err)
}

func TestEncodeBoolArrayPacking(t *testing.T) {
	boolArrT := mustType(t, "bool[9]")
	values := []interface{}{true, false, true, false, true, false, true, false, true}

	encoded, err := boolArrT.Encode(values)
	require.NoError(t, err)
	// first 8 bools in one byte msb-first, 9th in the next
	assert.Equal(t, []byte{0xaa, 0x80}, encoded)

	decoded, err := boolArrT.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestEncodeDynamicBoolArray(t *testing.T) {
	boolsT := mustType(t, "bool[]")
	values := []interface{}{true, true, false}

	encoded, err := boolsT.Encode(values)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x03, 0xc0}, encoded)

	decoded, err := boolsT.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestEncodeUintArray(t *testing.T) {
	arrT := mustType(t, "uint64[]")
	encoded, err := arrT.Encode([]uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x02,
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 0, 0, 2,
	}, encoded)

	decoded, err := arrT.Decode(encoded)
	require.NoError(t, err)
	elems := decoded.([]interface{})
	require.Len(t, elems, 2)
	assert.Zero(t, big.NewInt(1).Cmp(elems[0].(*big.Int)))
	assert.Zero(t, big.NewInt(2).Cmp(elems[1].(*big.Int)))
}

func TestEncodeMixedTuple(t *testing.T) {
	// (uint8,string,bool) exercises static, dynamic and packed segments
	tupleT := mustType(t, "(uint8,string,bool)")
	values := []interface{}{uint8(42), "hi", true}

	encoded, err := tupleT.Encode(values)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		42,         // uint8 head
		0x00, 0x04, // offset of string tail
		0x80,       // bool head
		0x00, 0x02, // string length
		'h', 'i',
	}, encoded)

	decoded, err := tupleT.Decode(encoded)
	require.NoError(t, err)
	elems := decoded.([]interface{})
	require.Len(t, elems, 3)
	assert.Zero(t, big.NewInt(42).Cmp(elems[0].(*big.Int)))
	assert.Equal(t, "hi", elems[1])
	assert.Equal(t, true, elems[2])
}

func TestEncodeNestedDynamicTuple(t *testing.T) {
	tupleT := mustType(t, "(string,string)")
	values := []interface{}{"a", "bc"}

	encoded, err := tupleT.Encode(values)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x04, // offset of first string
		0x00, 0x07, // offset of second string
		0x00, 0x01, 'a',
		0x00, 0x02, 'b', 'c',
	}, encoded)

	decoded, err := tupleT.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, values, decoded.([]interface{}))
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	uint64T := mustType(t, "uint64")
	encoded, err := uint64T.Encode(uint64(7))
	require.NoError(t, err)

	_, err = uint64T.Decode(append(encoded, 0x00))
	require.Error(t, err)
	var trailing TrailingDataError
	require.ErrorAs(t, err, &trailing)
	assert.Equal(t, 1, trailing.Extra)

	tupleT := mustType(t, "(uint8,bool)")
	tencoded, err := tupleT.Encode([]interface{}{uint8(1), true})
	require.NoError(t, err)
	_, err = tupleT.Decode(append(tencoded, 0xff))
	require.ErrorAs(t, err, &trailing)
}

func TestDecodeStringValidatesLengthPrefix(t *testing.T) {
	stringT := mustType(t, "string")

	// Body longer than the declared length.
	_, err := stringT.Decode([]byte{0x00, 0x03, 'a', 'b', 'c', 'd'})
	require.Error(t, err)
	var trailing TrailingDataError
	require.ErrorAs(t, err, &trailing)
	assert.Equal(t, 1, trailing.Extra)

	// Body shorter than the declared length.
	_, err = stringT.Decode([]byte{0x00, 0x05, 'a', 'b', 'c'})
	require.Error(t, err)

	decoded, err := stringT.Decode([]byte{0x00, 0x03, 'a', 'b', 'c'})
	require.NoError(t, err)
	assert.Equal(t, "abc", decoded)

	// A string in the last dynamic segment of a tuple must not absorb
	// trailing junk either.
	tupleT := mustType(t, "(uint8,string)")
	tencoded, err := tupleT.Encode([]interface{}{uint8(1), "hi"})
	require.NoError(t, err)
	_, err = tupleT.Decode(append(tencoded, 0xff))
	require.ErrorAs(t, err, &trailing)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	uint64T := mustType(t, "uint64")
	_, err := uint64T.Decode([]byte{0, 0, 0})
	require.Error(t, err)

	arrT := mustType(t, "uint64[]")
	_, err = arrT.Decode([]byte{0x00, 0x02, 0, 0, 0, 0, 0, 0, 0, 1})
	require.Error(t, err)
}

func TestDecodeRejectsBadOffsets(t *testing.T) {
	tupleT := mustType(t, "(string,string)")
	// second offset points backwards
	bad := []byte{
		0x00, 0x04,
		0x00, 0x03,
		0x00, 0x01, 'a',
		0x00, 0x01, 'b',
	}
	_, err := tupleT.Decode(bad)
	require.Error(t, err)

	// first offset does not follow the head section
	bad = []byte{
		0x00, 0x05,
		0x00, 0x08,
		0x00, 0x00, 0x01, 'a',
		0x00, 0x01, 'b',
	}
	_, err = tupleT.Decode(bad)
	require.Error(t, err)
}

func TestRoundTripLargeUint(t *testing.T) {
	uint512T := mustType(t, "uint512")
	v := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 512), big.NewInt(1))

	encoded, err := uint512T.Encode(v)
	require.NoError(t, err)
	require.Len(t, encoded, 64)

	decoded, err := uint512T.Decode(encoded)
	require.NoError(t, err)
	assert.Zero(t, v.Cmp(decoded.(*big.Int)))

	_, err = uint512T.Encode(new(big.Int).Lsh(big.NewInt(1), 512))
	require.Error(t, err)
}

func TestRoundTripComposite(t *testing.T) {
	compositeT := mustType(t, "(uint64,(bool,bool),byte[2],string[])")
	values := []interface{}{
		uint64(123456),
		[]interface{}{true, false},
		[]byte{0x01, 0x02},
		[]interface{}{"x", "yz"},
	}

	encoded, err := compositeT.Encode(values)
	require.NoError(t, err)

	decoded, err := compositeT.Decode(encoded)
	require.NoError(t, err)
	elems := decoded.([]interface{})
	require.Len(t, elems, 4)
	assert.Zero(t, big.NewInt(123456).Cmp(elems[0].(*big.Int)))
	assert.Equal(t, []interface{}{true, false}, elems[1])
	assert.Equal(t, []interface{}{byte(1), byte(2)}, elems[2])
	assert.Equal(t, []interface{}{"x", "yz"}, elems[3])
}
