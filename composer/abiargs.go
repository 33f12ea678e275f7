package composer

import (
	"fmt"

	"github.com/algorandfoundation/algokit-go/abi"
)

// maxDirectAppArgs is the number of application argument slots available to
// method arguments. When more arguments are supplied, the tail is packed
// into a tuple occupying the final slot.
const maxDirectAppArgs = 15

// ABIArg is one typed method argument.
type ABIArg struct {
	Type  abi.Type
	Value interface{}
}

// EncodeAppArgs encodes typed method arguments into application argument
// byte strings. With more than 15 arguments, the first 14 are encoded
// directly and the remainder is packed as a single tuple in the 15th slot.
func EncodeAppArgs(args []ABIArg) ([][]byte, error) {
	if len(args) <= maxDirectAppArgs {
		return encodeEachArg(args)
	}

	direct := maxDirectAppArgs - 1
	encoded, err := encodeEachArg(args[:direct])
	if err != nil {
		return nil, err
	}

	rest := args[direct:]
	childTypes := make([]abi.Type, len(rest))
	values := make([]interface{}, len(rest))
	for i, arg := range rest {
		childTypes[i] = arg.Type
		values[i] = arg.Value
	}
	tupleType, err := abi.MakeTupleType(childTypes)
	if err != nil {
		return nil, fmt.Errorf("packing argument tuple: %w", err)
	}
	packed, err := tupleType.Encode(values)
	if err != nil {
		return nil, fmt.Errorf("encoding argument tuple: %w", err)
	}
	return append(encoded, packed), nil
}

func encodeEachArg(args []ABIArg) ([][]byte, error) {
	encoded := make([][]byte, len(args))
	for i, arg := range args {
		b, err := arg.Type.Encode(arg.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding argument %d as %s: %w", i, arg.Type, err)
		}
		encoded[i] = b
	}
	return encoded, nil
}

// DecodeAppArgs reverses EncodeAppArgs for the given argument types,
// unpacking a trailing tuple when the argument count exceeds the direct
// slots.
func DecodeAppArgs(argTypes []abi.Type, encoded [][]byte) ([]interface{}, error) {
	if len(argTypes) <= maxDirectAppArgs {
		if len(encoded) != len(argTypes) {
			return nil, fmt.Errorf("expected %d encoded arguments, got %d", len(argTypes), len(encoded))
		}
		return decodeEachArg(argTypes, encoded)
	}

	direct := maxDirectAppArgs - 1
	if len(encoded) != maxDirectAppArgs {
		return nil, fmt.Errorf("expected %d encoded arguments, got %d", maxDirectAppArgs, len(encoded))
	}
	values, err := decodeEachArg(argTypes[:direct], encoded[:direct])
	if err != nil {
		return nil, err
	}

	rest := argTypes[direct:]
	tupleType, err := abi.MakeTupleType(rest)
	if err != nil {
		return nil, fmt.Errorf("unpacking argument tuple: %w", err)
	}
	packed, err := tupleType.Decode(encoded[direct])
	if err != nil {
		return nil, fmt.Errorf("decoding argument tuple: %w", err)
	}
	return append(values, packed.([]interface{})...), nil
}

func decodeEachArg(argTypes []abi.Type, encoded [][]byte) ([]interface{}, error) {
	values := make([]interface{}, len(argTypes))
	for i, argType := range argTypes {
		v, err := argType.Decode(encoded[i])
		if err != nil {
			return nil, fmt.Errorf("decoding argument %d as %s: %w", i, argType, err)
		}
		values[i] = v
	}
	return values, nil
}
