package pointer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/kelwin/gvdbgo/gvdberr"
)

func TestPutReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	PutU32LE(&buf, 0xdeadbeef)
	PutU16LE(&buf, 0xcafe)
	PutPointer(&buf, New(10, 20))

	b := buf.Bytes()

	u32, err := ReadU32LE(b, 0)
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("u32 = %#x, err = %v", u32, err)
	}

	u16, err := ReadU16LE(b, 4)
	if err != nil || u16 != 0xcafe {
		t.Fatalf("u16 = %#x, err = %v", u16, err)
	}

	p, err := ReadPointer(b, 6, binary.LittleEndian)
	if err != nil || p != New(10, 20) {
		t.Fatalf("pointer = %+v, err = %v", p, err)
	}
}

func TestReadBeyondSliceIsDataOffset(t *testing.T) {
	b := make([]byte, 4)
	if _, err := ReadU32LE(b, 1); !errors.Is(err, gvdberr.ErrDataOffset) {
		t.Fatalf("expected ErrDataOffset, got %v", err)
	}
}

func TestCheckAlignment(t *testing.T) {
	if err := CheckAlignment(16, 8); err != nil {
		t.Fatalf("16 should be 8-aligned: %v", err)
	}
	if err := CheckAlignment(12, 8); !errors.Is(err, gvdberr.ErrDataAlignment) {
		t.Fatalf("expected ErrDataAlignment, got %v", err)
	}
}

func TestSizeAndEmpty(t *testing.T) {
	p := New(10, 10)
	if !p.Empty() || p.Size() != 0 {
		t.Fatalf("expected empty zero-size pointer, got %+v", p)
	}

	p2 := New(10, 30)
	if p2.Empty() || p2.Size() != 20 {
		t.Fatalf("expected size 20, got %+v", p2)
	}
}

func TestReadPointerRejectsStartAfterEnd(t *testing.T) {
	var buf bytes.Buffer
	PutU32LE(&buf, 20)
	PutU32LE(&buf, 10)

	if _, err := ReadPointer(buf.Bytes(), 0, binary.LittleEndian); err == nil {
		t.Fatal("expected error for start > end")
	}
}
