// Package gvdbfile parses and assembles GVDB files: the fixed header, the
// hierarchy of hash tables it addresses, and the reader/writer operations
// (get, list, open_subtable; Assemble) layered on top of them.
package gvdbfile

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/kelwin/gvdbgo/gvdberr"
	"github.com/kelwin/gvdbgo/pointer"
	"github.com/kelwin/gvdbgo/variant"
)

// File is an opened, validated GVDB file over a byte slice the caller
// guarantees stays alive and unmodified for File's lifetime.
type File struct {
	data   []byte
	order  binary.ByteOrder
	header Header
	root   *HashTable
	codec  variant.Codec
}

// OpenOption configures Open.
type OpenOption func(*File)

// WithReaderCodec overrides the variant codec used to decode 'v' leaves.
// Defaults to variant.DefaultCodec{}.
func WithReaderCodec(c variant.Codec) OpenOption {
	return func(f *File) { f.codec = c }
}

// Open validates the header of data and locates the root hash table.
func Open(data []byte, opts ...OpenOption) (*File, error) {
	header, order, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	root, err := NewHashTable(data, order, header.Root)
	if err != nil {
		return nil, err
	}

	f := &File{
		data:   data,
		order:  order,
		header: header,
		root:   root,
		codec:  variant.DefaultCodec{},
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// OpenMapped memory-maps path read-only and opens the GVDB file over the
// mapping. The returned close func must be called to release the mapping;
// the *File must not be used afterward.
func OpenMapped(path string, opts ...OpenOption) (*File, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, gvdberr.IO(path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, gvdberr.IO(path, err)
	}

	gf, err := Open([]byte(m), opts...)
	if err != nil {
		_ = m.Unmap()
		return nil, nil, err
	}

	return gf, m.Unmap, nil
}

// Header returns the parsed file header.
func (f *File) Header() Header { return f.header }

// Get resolves key against the root table and decodes it as a variant leaf.
func (f *File) Get(key string) (variant.Value, bool, error) {
	return f.get(f.root, key)
}

func (f *File) get(table *HashTable, key string) (variant.Value, bool, error) {
	p, ok, err := table.Get([]byte(key), 'v')
	if err != nil || !ok {
		return variant.Value{}, ok, err
	}

	if err := pointer.CheckAlignment(p.Start, valueAlignment); err != nil {
		return variant.Value{}, false, err
	}

	payload, err := pointer.Slice(f.data, p)
	if err != nil {
		return variant.Value{}, false, err
	}

	v, err := f.codec.Decode(payload)
	if err != nil {
		return variant.Value{}, false, err
	}
	return v, true, nil
}

// List returns every key in the root table.
func (f *File) List() ([]string, error) {
	return f.root.List()
}

// OpenSubtable resolves key against the root table expecting a nested
// hash table ('L') and returns a HashTable over it.
func (f *File) OpenSubtable(key string) (*HashTable, bool, error) {
	return f.openSubtable(f.root, key)
}

func (f *File) openSubtable(table *HashTable, key string) (*HashTable, bool, error) {
	p, ok, err := table.Get([]byte(key), 'L')
	if err != nil || !ok {
		return nil, ok, err
	}

	sub, err := NewHashTable(f.data, f.order, p)
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// GetIn resolves key against an already-opened subtable.
func (f *File) GetIn(table *HashTable, key string) (variant.Value, bool, error) {
	return f.get(table, key)
}

// OpenSubtableIn resolves key against an already-opened subtable, expecting
// a further nested hash table.
func (f *File) OpenSubtableIn(table *HashTable, key string) (*HashTable, bool, error) {
	return f.openSubtable(table, key)
}
