// Package msgpack provides the canonical binary object encoding used on the
// Algorand wire protocol: msgpack with lexicographically sorted map keys and
// empty fields omitted. Everything that is hashed, signed or submitted to a
// node must round-trip through these handles.
package msgpack

import (
	"github.com/algorand/go-codec/codec"
)

// CodecHandle is the canonical msgpack handle. Key order is deterministic and
// zero-valued fields are dropped, so encoding the same object always yields
// the same bytes.
var CodecHandle *codec.MsgpackHandle

// JSONHandle mirrors the canonical settings for JSON, used for REST payloads
// and wire-model transcoding.
var JSONHandle *codec.JsonHandle

func init() {
	CodecHandle = new(codec.MsgpackHandle)
	CodecHandle.ErrorIfNoField = true
	CodecHandle.ErrorIfNoArrayExpand = true
	CodecHandle.Canonical = true
	CodecHandle.RecursiveEmptyCheck = true
	CodecHandle.WriteExt = true
	CodecHandle.PositiveIntUnsigned = true

	JSONHandle = new(codec.JsonHandle)
	JSONHandle.ErrorIfNoField = true
	JSONHandle.ErrorIfNoArrayExpand = true
	JSONHandle.Canonical = true
	JSONHandle.RecursiveEmptyCheck = true
	JSONHandle.HTMLCharsAsIs = true
	JSONHandle.Indent = 0
	JSONHandle.MapKeyAsString = true
}

// Encode returns the canonical msgpack encoding of obj.
func Encode(obj interface{}) []byte {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, CodecHandle)
	enc.MustEncode(obj)
	return buf
}

// Decode attempts to decode canonical msgpack bytes into objptr.
func Decode(b []byte, objptr interface{}) error {
	dec := codec.NewDecoderBytes(b, CodecHandle)
	return dec.Decode(objptr)
}

// LenientDecode decodes msgpack bytes into objptr, ignoring fields the target
// type does not declare. Useful for responses from nodes running a newer
// protocol than this library was built against.
func LenientDecode(b []byte, objptr interface{}) error {
	handle := new(codec.MsgpackHandle)
	*handle = *CodecHandle
	handle.ErrorIfNoField = false
	dec := codec.NewDecoderBytes(b, handle)
	return dec.Decode(objptr)
}

// EncodeJSON returns the canonical JSON encoding of obj.
func EncodeJSON(obj interface{}) []byte {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, JSONHandle)
	enc.MustEncode(obj)
	return buf
}

// DecodeJSON decodes JSON bytes into objptr.
func DecodeJSON(b []byte, objptr interface{}) error {
	dec := codec.NewDecoderBytes(b, JSONHandle)
	return dec.Decode(objptr)
}

// LenientDecodeJSON decodes JSON bytes into objptr, ignoring unknown fields.
func LenientDecodeJSON(b []byte, objptr interface{}) error {
	handle := new(codec.JsonHandle)
	*handle = *JSONHandle
	handle.ErrorIfNoField = false
	dec := codec.NewDecoderBytes(b, handle)
	return dec.Decode(objptr)
}
