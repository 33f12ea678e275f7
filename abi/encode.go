package abi

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"reflect"

	"github.com/algorandfoundation/algokit-go/util"
)

// TrailingDataError reports bytes left over after a value was fully decoded.
// Canonical decoding consumes its input exactly.
type TrailingDataError struct {
	Extra int
}

func (e TrailingDataError) Error() string {
	return fmt.Sprintf("%d trailing bytes after decoded value", e.Extra)
}

// Encode converts a Go value into its canonical ABI encoding.
//
// Accepted Go representations:
//   - uint<N>, ufixed<N>x<M>: *big.Int, or any unsigned/non-negative integer
//   - byte: byte
//   - bool: bool
//   - address: [32]byte or a 32-byte []byte
//   - string: string or []byte
//   - arrays and tuples: []interface{} (or any slice/array; []byte for byte arrays)
func (t Type) Encode(value interface{}) ([]byte, error) {
	switch t.abiTypeID {
	case Uint, Ufixed:
		v, err := toBigInt(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t.String(), err)
		}
		return util.IntToFixedBytes(v, int(t.bitSize)/8)
	case Byte:
		b, ok := value.(byte)
		if !ok {
			return nil, fmt.Errorf("encoding byte: unsupported value type %T", value)
		}
		return []byte{b}, nil
	case Bool:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("encoding bool: unsupported value type %T", value)
		}
		if v {
			return []byte{0x80}, nil
		}
		return []byte{0x00}, nil
	case AddressType:
		return encodeAddress(value)
	case StringType:
		return encodeWithLengthPrefix(toStringBytes(value))
	case ArrayStatic:
		elems, err := toSlice(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t.String(), err)
		}
		if len(elems) != int(t.staticLength) {
			return nil, fmt.Errorf("encoding %s: expected %d elements, got %d", t.String(), t.staticLength, len(elems))
		}
		return encodeTupleElements(repeatType(t.elemType(), len(elems)), elems)
	case ArrayDynamic:
		elems, err := toSlice(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t.String(), err)
		}
		body, err := encodeTupleElements(repeatType(t.elemType(), len(elems)), elems)
		if err != nil {
			return nil, err
		}
		return prependLength(len(elems), body), nil
	case TupleType:
		elems, err := toSlice(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", t.String(), err)
		}
		if len(elems) != len(t.childTypes) {
			return nil, fmt.Errorf("encoding %s: expected %d elements, got %d", t.String(), len(t.childTypes), len(elems))
		}
		return encodeTupleElements(t.childTypes, elems)
	default:
		return nil, fmt.Errorf("cannot encode unknown type id %d", t.abiTypeID)
	}
}

// Decode converts a canonical ABI encoding back into a Go value. The inverse
// of Encode; decoded representations are *big.Int, byte, bool, [32]byte,
// string and []interface{}. The input must be consumed exactly, otherwise a
// TrailingDataError is returned.
func (t Type) Decode(encoded []byte) (interface{}, error) {
	switch t.abiTypeID {
	case StringType:
		body, err := stripLengthPrefix(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding string: %w", err)
		}
		// The prefix declares the exact byte count of the body.
		length := int(binary.BigEndian.Uint16(encoded))
		if len(body) < length {
			return nil, fmt.Errorf("decoding string: need %d bytes, have %d", length, len(body))
		}
		if len(body) > length {
			return nil, TrailingDataError{Extra: len(body) - length}
		}
		return string(body), nil
	case ArrayDynamic:
		body, err := stripLengthPrefix(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", t.String(), err)
		}
		length := int(binary.BigEndian.Uint16(encoded))
		return decodeTupleElements(repeatType(t.elemType(), length), body)
	case ArrayStatic:
		return decodeTupleElements(repeatType(t.elemType(), int(t.staticLength)), encoded)
	case TupleType:
		return decodeTupleElements(t.childTypes, encoded)
	default:
		return decodeStatic(t, encoded)
	}
}

// decodeStatic decodes a non-composite static value from exactly the right
// number of bytes.
func decodeStatic(t Type, encoded []byte) (interface{}, error) {
	expected, err := t.ByteLen()
	if err != nil {
		return nil, err
	}
	if len(encoded) < expected {
		return nil, fmt.Errorf("decoding %s: need %d bytes, have %d", t.String(), expected, len(encoded))
	}
	if len(encoded) > expected {
		return nil, TrailingDataError{Extra: len(encoded) - expected}
	}

	switch t.abiTypeID {
	case Uint, Ufixed:
		return util.FixedBytesToInt(encoded), nil
	case Byte:
		return encoded[0], nil
	case Bool:
		switch encoded[0] {
		case 0x80:
			return true, nil
		case 0x00:
			return false, nil
		default:
			return nil, fmt.Errorf("decoding bool: invalid byte 0x%02x", encoded[0])
		}
	case AddressType:
		var addr [addressByteSize]byte
		copy(addr[:], encoded)
		return addr, nil
	default:
		return nil, fmt.Errorf("decoding %s: not a static scalar", t.String())
	}
}

// encodeTupleElements implements the ARC-4 head/tail tuple encoding with
// bit-packing of consecutive booleans.
func encodeTupleElements(children []Type, values []interface{}) ([]byte, error) {
	if len(children) != len(values) {
		return nil, fmt.Errorf("tuple arity mismatch: %d types, %d values", len(children), len(values))
	}

	type headSlot struct {
		bytes     []byte
		dynamicAt int // index into tails, -1 for static
	}
	var heads []headSlot
	var tails [][]byte
	headLen := 0

	for i := 0; i < len(children); i++ {
		if children[i].abiTypeID == Bool {
			run := boolRunLength(children, i)
			packed := make([]byte, (run+7)/8)
			for j := 0; j < run; j++ {
				v, ok := values[i+j].(bool)
				if !ok {
					return nil, fmt.Errorf("encoding bool at index %d: unsupported value type %T", i+j, values[i+j])
				}
				if v {
					packed[j/8] |= 0x80 >> (j % 8)
				}
			}
			heads = append(heads, headSlot{bytes: packed, dynamicAt: -1})
			headLen += len(packed)
			i += run - 1
			continue
		}

		if children[i].IsDynamic() {
			encoded, err := children[i].Encode(values[i])
			if err != nil {
				return nil, err
			}
			heads = append(heads, headSlot{dynamicAt: len(tails)})
			tails = append(tails, encoded)
			headLen += lengthPrefixLen
			continue
		}

		encoded, err := children[i].Encode(values[i])
		if err != nil {
			return nil, err
		}
		heads = append(heads, headSlot{bytes: encoded, dynamicAt: -1})
		headLen += len(encoded)
	}

	// resolve dynamic offsets
	tailOffsets := make([]int, len(tails))
	offset := headLen
	for i, tail := range tails {
		if offset > maxTupleChildren {
			return nil, fmt.Errorf("tuple encoding overflows the uint16 offset space")
		}
		tailOffsets[i] = offset
		offset += len(tail)
	}

	out := make([]byte, 0, offset)
	for _, head := range heads {
		if head.dynamicAt >= 0 {
			var off [lengthPrefixLen]byte
			binary.BigEndian.PutUint16(off[:], uint16(tailOffsets[head.dynamicAt]))
			out = append(out, off[:]...)
			continue
		}
		out = append(out, head.bytes...)
	}
	for _, tail := range tails {
		out = append(out, tail...)
	}
	return out, nil
}

// decodeTupleElements is the inverse of encodeTupleElements. It consumes the
// input exactly and validates every dynamic offset.
func decodeTupleElements(children []Type, encoded []byte) ([]interface{}, error) {
	values := make([]interface{}, len(children))
	var dynamicIdx []int
	var offsets []int
	pos := 0

	for i := 0; i < len(children); i++ {
		if children[i].abiTypeID == Bool {
			run := boolRunLength(children, i)
			packedLen := (run + 7) / 8
			if pos+packedLen > len(encoded) {
				return nil, fmt.Errorf("decoding tuple: truncated bool block at index %d", i)
			}
			for j := 0; j < run; j++ {
				values[i+j] = encoded[pos+j/8]&(0x80>>(j%8)) != 0
			}
			pos += packedLen
			i += run - 1
			continue
		}

		if children[i].IsDynamic() {
			if pos+lengthPrefixLen > len(encoded) {
				return nil, fmt.Errorf("decoding tuple: truncated offset at index %d", i)
			}
			offsets = append(offsets, int(binary.BigEndian.Uint16(encoded[pos:])))
			dynamicIdx = append(dynamicIdx, i)
			pos += lengthPrefixLen
			continue
		}

		childLen, err := children[i].ByteLen()
		if err != nil {
			return nil, err
		}
		if pos+childLen > len(encoded) {
			return nil, fmt.Errorf("decoding tuple: truncated element at index %d", i)
		}
		values[i], err = children[i].Decode(encoded[pos : pos+childLen])
		if err != nil {
			return nil, err
		}
		pos += childLen
	}

	if len(dynamicIdx) == 0 {
		if pos < len(encoded) {
			return nil, TrailingDataError{Extra: len(encoded) - pos}
		}
		return values, nil
	}

	if offsets[0] != pos {
		return nil, fmt.Errorf("decoding tuple: first dynamic offset %d does not follow the head section (%d)", offsets[0], pos)
	}
	for k := 0; k < len(dynamicIdx); k++ {
		start := offsets[k]
		end := len(encoded)
		if k+1 < len(dynamicIdx) {
			end = offsets[k+1]
		}
		if start > end || end > len(encoded) {
			return nil, fmt.Errorf("decoding tuple: invalid dynamic segment [%d, %d)", start, end)
		}
		var err error
		values[dynamicIdx[k]], err = children[dynamicIdx[k]].Decode(encoded[start:end])
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

func repeatType(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func prependLength(n int, body []byte) []byte {
	out := make([]byte, lengthPrefixLen, lengthPrefixLen+len(body))
	binary.BigEndian.PutUint16(out, uint16(n))
	return append(out, body...)
}

func encodeWithLengthPrefix(body []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return prependLength(len(body), body), nil
}

// stripLengthPrefix drops the uint16 length prefix and returns the body.
// Callers compare the declared length against what they decode.
func stripLengthPrefix(encoded []byte) ([]byte, error) {
	if len(encoded) < lengthPrefixLen {
		return nil, fmt.Errorf("missing length prefix")
	}
	return encoded[lengthPrefixLen:], nil
}

func encodeAddress(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case [addressByteSize]byte:
		out := make([]byte, addressByteSize)
		copy(out, v[:])
		return out, nil
	case []byte:
		if len(v) != addressByteSize {
			return nil, fmt.Errorf("encoding address: expected %d bytes, got %d", addressByteSize, len(v))
		}
		out := make([]byte, addressByteSize)
		copy(out, v)
		return out, nil
	default:
		return nil, fmt.Errorf("encoding address: unsupported value type %T", value)
	}
}

func toStringBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("encoding string: unsupported value type %T", value)
	}
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case int:
		if v < 0 {
			return nil, fmt.Errorf("cannot encode negative value %d", v)
		}
		return new(big.Int).SetInt64(int64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported integer value type %T", value)
	}
}

// toSlice converts any Go slice or array into []interface{} for element-wise
// encoding.
func toSlice(value interface{}) ([]interface{}, error) {
	if elems, ok := value.([]interface{}); ok {
		return elems, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("unsupported sequence value type %T", value)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
