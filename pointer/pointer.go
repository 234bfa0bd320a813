// Package pointer implements the fixed-endian integer and offset/extent
// codec shared by every region of a GVDB file. All multi-byte integers are
// little-endian on disk; offsets are absolute byte offsets from the start
// of the file.
package pointer

import (
	"bytes"
	"encoding/binary"

	"github.com/kelwin/gvdbgo/gvdberr"
)

// Size of an encoded Pointer: two concatenated little-endian u32s.
const Size = 8

// Pointer is a half-open byte range [Start, End) delimiting a variable
// length region of a GVDB file.
type Pointer struct {
	Start uint32
	End   uint32
}

// New builds a Pointer, panicking if start > end — callers only ever
// construct pointers from values they just computed, never from untrusted
// input (ReadPointer is the untrusted-input path and returns an error instead).
func New(start, end uint32) Pointer {
	if start > end {
		panic("pointer: start > end")
	}
	return Pointer{Start: start, End: end}
}

// Size returns the length in bytes of the range the pointer denotes.
func (p Pointer) Size() uint32 { return p.End - p.Start }

// Empty reports whether the pointer denotes a zero-length range.
func (p Pointer) Empty() bool { return p.Start == p.End }

// ReadU32LE reads a little-endian u32 from b at offset.
func ReadU32LE(b []byte, offset uint32) (uint32, error) {
	return ReadU32(b, offset, binary.LittleEndian)
}

// ReadU16LE reads a little-endian u16 from b at offset.
func ReadU16LE(b []byte, offset uint32) (uint16, error) {
	return ReadU16(b, offset, binary.LittleEndian)
}

// ReadU32 reads a u32 from b at offset using the given byte order, so a
// reader can honour a file's byte_order flag (canonical files are
// little-endian; the header may flag a swapped, big-endian file).
func ReadU32(b []byte, offset uint32, order binary.ByteOrder) (uint32, error) {
	if uint64(offset)+4 > uint64(len(b)) {
		return 0, gvdberr.DataOffset("u32 read", offset, uint32(len(b)))
	}
	return order.Uint32(b[offset : offset+4]), nil
}

// ReadU16 reads a u16 from b at offset using the given byte order.
func ReadU16(b []byte, offset uint32, order binary.ByteOrder) (uint16, error) {
	if uint64(offset)+2 > uint64(len(b)) {
		return 0, gvdberr.DataOffset("u16 read", offset, uint32(len(b)))
	}
	return order.Uint16(b[offset : offset+2]), nil
}

// ReadPointer reads a Pointer (two concatenated u32s) from b at offset
// using the given byte order.
func ReadPointer(b []byte, offset uint32, order binary.ByteOrder) (Pointer, error) {
	start, err := ReadU32(b, offset, order)
	if err != nil {
		return Pointer{}, err
	}
	end, err := ReadU32(b, offset+4, order)
	if err != nil {
		return Pointer{}, err
	}
	if start > end {
		return Pointer{}, gvdberr.DataError("pointer start exceeds end")
	}
	return Pointer{Start: start, End: end}, nil
}

// Slice returns the byte range the pointer denotes, validating it lies
// within b.
func Slice(b []byte, p Pointer) ([]byte, error) {
	if uint64(p.End) > uint64(len(b)) {
		return nil, gvdberr.DataOffset("pointer end", p.End, uint32(len(b)))
	}
	return b[p.Start:p.End], nil
}

// CheckAlignment returns gvdberr.ErrDataAlignment-wrapping error if offset
// is not a multiple of alignment.
func CheckAlignment(offset uint32, alignment uint32) error {
	if alignment == 0 {
		return nil
	}
	if offset&(alignment-1) != 0 {
		return gvdberr.DataAlignment(offset, int(alignment))
	}
	return nil
}

// PutU32LE appends the little-endian encoding of v to buf.
func PutU32LE(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

// PutU16LE appends the little-endian encoding of v to buf.
func PutU16LE(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

// PutPointer appends the encoded form of p to buf.
func PutPointer(buf *bytes.Buffer, p Pointer) {
	PutU32LE(buf, p.Start)
	PutU32LE(buf, p.End)
}
