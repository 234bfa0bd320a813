// Package variant stands in for the variant-value serialization that a real
// GVDB deployment delegates to an external codec (GVariant in glib, or
// whatever the embedding application uses). The core only needs something
// behind a narrow encode(Value)/decode([]byte) boundary tagged 'v'; this
// package supplies a minimal, self-describing implementation of that
// boundary covering the scalar kinds GVDB commonly stores as leaves. It is
// not a GVariant implementation and does not attempt wire compatibility
// with one — swap it for a real codec in production.
package variant

import (
	"encoding/binary"

	"github.com/kelwin/gvdbgo/gvdberr"
)

// Kind tags the scalar type a Value holds, mirroring the GVariant type
// characters for the subset this codec supports.
type Kind byte

const (
	KindBytes  Kind = 'a' // raw byte string, NUL-terminated on the wire
	KindString Kind = 's' // UTF-8 string, NUL-terminated on the wire
	KindBool   Kind = 'b'
	KindByte   Kind = 'y'
	KindInt16  Kind = 'n'
	KindUint16 Kind = 'q'
	KindInt32  Kind = 'i'
	KindUint32 Kind = 'u'
	KindInt64  Kind = 'x'
	KindUint64 Kind = 't'
)

// Value is a decoded (or yet-to-be-encoded) scalar payload.
type Value struct {
	Kind  Kind
	bytes []byte
	num   uint64
	boo   bool
}

func String(s string) Value  { return Value{Kind: KindString, bytes: []byte(s)} }
func Bytes(b []byte) Value   { return Value{Kind: KindBytes, bytes: append([]byte(nil), b...)} }
func Bool(b bool) Value      { return Value{Kind: KindBool, boo: b} }
func Byte(v uint8) Value     { return Value{Kind: KindByte, num: uint64(v)} }
func Int16(v int16) Value    { return Value{Kind: KindInt16, num: uint64(uint16(v))} }
func Uint16(v uint16) Value  { return Value{Kind: KindUint16, num: uint64(v)} }
func Int32(v int32) Value    { return Value{Kind: KindInt32, num: uint64(uint32(v))} }
func Uint32(v uint32) Value  { return Value{Kind: KindUint32, num: uint64(v)} }
func Int64(v int64) Value    { return Value{Kind: KindInt64, num: uint64(v)} }
func Uint64(v uint64) Value  { return Value{Kind: KindUint64, num: v} }

func (v Value) AsString() string { return string(v.bytes) }
func (v Value) AsBytes() []byte  { return v.bytes }
func (v Value) AsBool() bool     { return v.boo }
func (v Value) AsUint64() uint64 { return v.num }
func (v Value) AsInt64() int64   { return int64(v.num) }

// Equal reports whether two values are byte-for-byte the same payload of
// the same kind, the property a decode(encode(v)) round trip must satisfy.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBytes, KindString:
		if len(v.bytes) != len(other.bytes) {
			return false
		}
		for i := range v.bytes {
			if v.bytes[i] != other.bytes[i] {
				return false
			}
		}
		return true
	case KindBool:
		return v.boo == other.boo
	default:
		return v.num == other.num
	}
}

// Codec is the external collaborator the core depends on: given a payload's
// bytes it recovers a Value, and given a Value it produces the bytes to
// store. The core never inspects a Value's internals directly — it treats
// the encoded form as an opaque byte extent addressed by a Pointer.
type Codec interface {
	Encode(v Value) ([]byte, error)
	Decode(b []byte) (Value, error)
}

// DefaultCodec implements Codec using a tag-byte format: one Kind byte
// followed by the little-endian payload, with strings and byte strings
// NUL-terminated. It is the codec gvdbfile uses when the caller supplies none.
type DefaultCodec struct{}

func (DefaultCodec) Encode(v Value) ([]byte, error) {
	switch v.Kind {
	case KindBytes, KindString:
		out := make([]byte, 0, 2+len(v.bytes))
		out = append(out, byte(v.Kind))
		out = append(out, v.bytes...)
		out = append(out, 0)
		return out, nil
	case KindBool:
		b := byte(0)
		if v.boo {
			b = 1
		}
		return []byte{byte(v.Kind), b}, nil
	case KindByte:
		return []byte{byte(v.Kind), byte(v.num)}, nil
	case KindInt16, KindUint16:
		out := make([]byte, 3)
		out[0] = byte(v.Kind)
		binary.LittleEndian.PutUint16(out[1:], uint16(v.num))
		return out, nil
	case KindInt32, KindUint32:
		out := make([]byte, 5)
		out[0] = byte(v.Kind)
		binary.LittleEndian.PutUint32(out[1:], uint32(v.num))
		return out, nil
	case KindInt64, KindUint64:
		out := make([]byte, 9)
		out[0] = byte(v.Kind)
		binary.LittleEndian.PutUint64(out[1:], v.num)
		return out, nil
	default:
		return nil, gvdberr.Unimplemented("unknown variant kind")
	}
}

func (DefaultCodec) Decode(b []byte) (Value, error) {
	if len(b) < 1 {
		return Value{}, gvdberr.Variant(gvdberr.DataError("empty payload"))
	}
	kind := Kind(b[0])
	rest := b[1:]

	switch kind {
	case KindBytes, KindString:
		if len(rest) == 0 || rest[len(rest)-1] != 0 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("missing NUL terminator"))
		}
		return Value{Kind: kind, bytes: append([]byte(nil), rest[:len(rest)-1]...)}, nil
	case KindBool:
		if len(rest) != 1 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("bad bool length"))
		}
		return Value{Kind: kind, boo: rest[0] != 0}, nil
	case KindByte:
		if len(rest) != 1 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("bad byte length"))
		}
		return Value{Kind: kind, num: uint64(rest[0])}, nil
	case KindInt16, KindUint16:
		if len(rest) != 2 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("bad int16 length"))
		}
		return Value{Kind: kind, num: uint64(binary.LittleEndian.Uint16(rest))}, nil
	case KindInt32, KindUint32:
		if len(rest) != 4 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("bad int32 length"))
		}
		return Value{Kind: kind, num: uint64(binary.LittleEndian.Uint32(rest))}, nil
	case KindInt64, KindUint64:
		if len(rest) != 8 {
			return Value{}, gvdberr.Variant(gvdberr.DataError("bad int64 length"))
		}
		return Value{Kind: kind, num: binary.LittleEndian.Uint64(rest)}, nil
	default:
		return Value{}, gvdberr.Variant(gvdberr.DataError("unrecognised variant kind tag"))
	}
}
