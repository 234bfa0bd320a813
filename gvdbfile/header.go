package gvdbfile

import (
	"bytes"
	"encoding/binary"

	"github.com/kelwin/gvdbgo/gvdberr"
	"github.com/kelwin/gvdbgo/pointer"
)

// HeaderSize is the fixed size of a GVDB file header.
const HeaderSize = 32

// OptionBundle is bit 0 of Header.Options: the file is a GResource bundle.
const OptionBundle uint32 = 1 << 0

var (
	signature0 = [4]byte{'G', 'V', 'a', 'r'}
	signature1 = [4]byte{'i', 'a', 'n', 't'}
)

// Header is the fixed 32 byte GVDB file header.
type Header struct {
	ByteOrder uint32
	Options   uint32
	Root      pointer.Pointer
}

// IsBundle reports whether OptionBundle is set.
func (h Header) IsBundle() bool { return h.Options&OptionBundle != 0 }

// ReadHeader validates and parses the header at the start of b, returning
// the parsed header and the byte order the rest of the file must be read
// with (little-endian unless ByteOrder is non-zero).
func ReadHeader(b []byte) (Header, binary.ByteOrder, error) {
	if len(b) < HeaderSize {
		return Header{}, nil, gvdberr.DataOffset("header", HeaderSize, uint32(len(b)))
	}

	if !bytes.Equal(b[0:4], signature0[:]) || !bytes.Equal(b[4:8], signature1[:]) {
		return Header{}, nil, gvdberr.ErrInvalidData
	}

	byteOrder := binary.LittleEndian.Uint32(b[8:12])

	order := binary.ByteOrder(binary.LittleEndian)
	if byteOrder != 0 {
		order = binary.BigEndian
	}

	options, err := pointer.ReadU32(b, 12, order)
	if err != nil {
		return Header{}, nil, err
	}

	root, err := pointer.ReadPointer(b, 16, order)
	if err != nil {
		return Header{}, nil, err
	}

	return Header{ByteOrder: byteOrder, Options: options, Root: root}, order, nil
}

// WriteHeader appends a little-endian header (the only form this writer
// produces; canonical files are always little-endian) to buf.
func WriteHeader(buf *bytes.Buffer, options uint32, root pointer.Pointer) {
	buf.Write(signature0[:])
	buf.Write(signature1[:])
	pointer.PutU32LE(buf, 0) // byte_order: 0 == little-endian
	pointer.PutU32LE(buf, options)
	pointer.PutPointer(buf, root)
	buf.Write(make([]byte, 8)) // reserved
}
