package abi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BaseType is the category of an ABI type.
type BaseType uint32

const (
	// Uint is the unsigned integer type uint<N>, N in [8, 512] and a
	// multiple of 8.
	Uint BaseType = iota

	// Byte is a single byte, an alias for uint8 on the wire.
	Byte

	// Ufixed is the fixed-point type ufixed<N>x<M>, M in [1, 160].
	Ufixed

	// Bool is a boolean, bit-packed when adjacent to other booleans.
	Bool

	// ArrayStatic is a fixed-length array T[N].
	ArrayStatic

	// AddressType is a 32-byte Algorand address.
	AddressType

	// ArrayDynamic is a variable-length array T[].
	ArrayDynamic

	// StringType is a variable-length UTF-8 string.
	StringType

	// TupleType is a heterogeneous sequence (T1,T2,...,Tn).
	TupleType
)

const (
	uintMaxBitSize     = 512
	ufixedMaxPrecision = 160
	maxTupleChildren   = (1 << 16) - 1

	addressByteSize = 32
	lengthPrefixLen = 2
	singleByteSize  = 1
)

// Type represents a parsed ABI type. Construct values with TypeOf or the
// Make* helpers; the zero value is uint (invalid for use).
type Type struct {
	abiTypeID  BaseType
	childTypes []Type

	// bitSize is N for uint<N> and ufixed<N>x<M>
	bitSize uint16

	// precision is M for ufixed<N>x<M>
	precision uint16

	// staticLength is N for T[N]
	staticLength uint32
}

// MakeUintType constructs uint<size>.
func MakeUintType(size int) (Type, error) {
	if size%8 != 0 || size < 8 || size > uintMaxBitSize {
		return Type{}, fmt.Errorf("unsupported uint bit size: %d", size)
	}
	return Type{abiTypeID: Uint, bitSize: uint16(size)}, nil
}

// MakeUfixedType constructs ufixed<size>x<precision>.
func MakeUfixedType(size, precision int) (Type, error) {
	if size%8 != 0 || size < 8 || size > uintMaxBitSize {
		return Type{}, fmt.Errorf("unsupported ufixed bit size: %d", size)
	}
	if precision < 1 || precision > ufixedMaxPrecision {
		return Type{}, fmt.Errorf("unsupported ufixed precision: %d", precision)
	}
	return Type{abiTypeID: Ufixed, bitSize: uint16(size), precision: uint16(precision)}, nil
}

// MakeByteType constructs byte.
func MakeByteType() Type { return Type{abiTypeID: Byte} }

// MakeBoolType constructs bool.
func MakeBoolType() Type { return Type{abiTypeID: Bool} }

// MakeAddressType constructs address.
func MakeAddressType() Type { return Type{abiTypeID: AddressType} }

// MakeStringType constructs string.
func MakeStringType() Type { return Type{abiTypeID: StringType} }

// MakeStaticArrayType constructs elem[length].
func MakeStaticArrayType(elem Type, length uint32) Type {
	return Type{abiTypeID: ArrayStatic, childTypes: []Type{elem}, staticLength: length}
}

// MakeDynamicArrayType constructs elem[].
func MakeDynamicArrayType(elem Type) Type {
	return Type{abiTypeID: ArrayDynamic, childTypes: []Type{elem}}
}

// MakeTupleType constructs (children...).
func MakeTupleType(children []Type) (Type, error) {
	if len(children) > maxTupleChildren {
		return Type{}, fmt.Errorf("tuple with %d children exceeds the limit of %d", len(children), maxTupleChildren)
	}
	return Type{abiTypeID: TupleType, childTypes: children, staticLength: uint32(len(children))}, nil
}

var staticArrayRegexp = regexp.MustCompile(`^([a-z\d\[\](),]+)\[([1-9][\d]*)]$`)
var ufixedRegexp = regexp.MustCompile(`^ufixed([1-9][\d]*)x([1-9][\d]*)$`)

// TypeOf parses an ABI type name.
func TypeOf(str string) (Type, error) {
	switch {
	case strings.HasSuffix(str, "[]"):
		elem, err := TypeOf(str[:len(str)-2])
		if err != nil {
			return Type{}, err
		}
		return MakeDynamicArrayType(elem), nil
	case strings.HasSuffix(str, "]"):
		matches := staticArrayRegexp.FindStringSubmatch(str)
		if len(matches) != 3 {
			return Type{}, fmt.Errorf("static array ill formated: %s", str)
		}
		elem, err := TypeOf(matches[1])
		if err != nil {
			return Type{}, err
		}
		length, err := strconv.ParseUint(matches[2], 10, 32)
		if err != nil {
			return Type{}, err
		}
		return MakeStaticArrayType(elem, uint32(length)), nil
	case strings.HasPrefix(str, "uint"):
		size, err := strconv.ParseUint(str[4:], 10, 16)
		if err != nil {
			return Type{}, fmt.Errorf("ill formed uint type: %s", str)
		}
		return MakeUintType(int(size))
	case str == "byte":
		return MakeByteType(), nil
	case strings.HasPrefix(str, "ufixed"):
		matches := ufixedRegexp.FindStringSubmatch(str)
		if len(matches) != 3 {
			return Type{}, fmt.Errorf("ill formed ufixed type: %s", str)
		}
		size, err := strconv.ParseUint(matches[1], 10, 16)
		if err != nil {
			return Type{}, err
		}
		precision, err := strconv.ParseUint(matches[2], 10, 16)
		if err != nil {
			return Type{}, err
		}
		return MakeUfixedType(int(size), int(precision))
	case str == "bool":
		return MakeBoolType(), nil
	case str == "address":
		return MakeAddressType(), nil
	case str == "string":
		return MakeStringType(), nil
	case len(str) >= 2 && str[0] == '(' && str[len(str)-1] == ')':
		parts, err := splitTupleContent(str[1 : len(str)-1])
		if err != nil {
			return Type{}, err
		}
		children := make([]Type, len(parts))
		for i, part := range parts {
			children[i], err = TypeOf(part)
			if err != nil {
				return Type{}, err
			}
		}
		return MakeTupleType(children)
	default:
		return Type{}, fmt.Errorf("cannot convert string %q to an ABI type", str)
	}
}

// splitTupleContent splits a tuple body on top-level commas.
func splitTupleContent(str string) ([]string, error) {
	if str == "" {
		return nil, nil
	}
	if strings.HasPrefix(str, ",") || strings.HasSuffix(str, ",") || strings.Contains(str, ",,") {
		return nil, fmt.Errorf("tuple content %q has an empty element", str)
	}

	var parts []string
	var depth int
	start := 0
	for i, r := range str {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("tuple content %q has unbalanced parentheses", str)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, str[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("tuple content %q has unbalanced parentheses", str)
	}
	parts = append(parts, str[start:])
	return parts, nil
}

// String returns the canonical name of the type.
func (t Type) String() string {
	switch t.abiTypeID {
	case Uint:
		return fmt.Sprintf("uint%d", t.bitSize)
	case Byte:
		return "byte"
	case Ufixed:
		return fmt.Sprintf("ufixed%dx%d", t.bitSize, t.precision)
	case Bool:
		return "bool"
	case ArrayStatic:
		return fmt.Sprintf("%s[%d]", t.childTypes[0].String(), t.staticLength)
	case AddressType:
		return "address"
	case ArrayDynamic:
		return t.childTypes[0].String() + "[]"
	case StringType:
		return "string"
	case TupleType:
		names := make([]string, len(t.childTypes))
		for i, child := range t.childTypes {
			names[i] = child.String()
		}
		return "(" + strings.Join(names, ",") + ")"
	default:
		return fmt.Sprintf("<unknown type %d>", t.abiTypeID)
	}
}

// Equal reports structural equality of types.
func (t Type) Equal(other Type) bool {
	if t.abiTypeID != other.abiTypeID ||
		t.bitSize != other.bitSize ||
		t.precision != other.precision ||
		t.staticLength != other.staticLength ||
		len(t.childTypes) != len(other.childTypes) {
		return false
	}
	for i := range t.childTypes {
		if !t.childTypes[i].Equal(other.childTypes[i]) {
			return false
		}
	}
	return true
}

// IsDynamic reports whether the encoding of the type has variable length.
func (t Type) IsDynamic() bool {
	switch t.abiTypeID {
	case ArrayDynamic, StringType:
		return true
	default:
		for _, child := range t.childTypes {
			if child.IsDynamic() {
				return true
			}
		}
		return false
	}
}

// ByteLen returns the encoded size of a static type. Dynamic types have no
// fixed size and return an error.
func (t Type) ByteLen() (int, error) {
	switch t.abiTypeID {
	case Uint, Ufixed:
		return int(t.bitSize) / 8, nil
	case Byte, Bool:
		return singleByteSize, nil
	case AddressType:
		return addressByteSize, nil
	case ArrayStatic:
		if t.childTypes[0].abiTypeID == Bool {
			return (int(t.staticLength) + 7) / 8, nil
		}
		elemLen, err := t.childTypes[0].ByteLen()
		if err != nil {
			return 0, err
		}
		return elemLen * int(t.staticLength), nil
	case TupleType:
		size := 0
		for i := 0; i < len(t.childTypes); i++ {
			if t.childTypes[i].abiTypeID == Bool {
				// consecutive bools share a byte
				run := boolRunLength(t.childTypes, i)
				size += (run + 7) / 8
				i += run - 1
				continue
			}
			childLen, err := t.childTypes[i].ByteLen()
			if err != nil {
				return 0, err
			}
			size += childLen
		}
		return size, nil
	default:
		return 0, fmt.Errorf("%s is a dynamic type", t.String())
	}
}

// boolRunLength counts consecutive bool types starting at index i.
func boolRunLength(children []Type, i int) int {
	run := 0
	for i+run < len(children) && children[i+run].abiTypeID == Bool {
		run++
	}
	return run
}

// elemType returns the element type of an array, expanding address and
// string into their element forms where needed.
func (t Type) elemType() Type {
	return t.childTypes[0]
}
