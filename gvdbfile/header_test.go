package gvdbfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kelwin/gvdbgo/gvdberr"
	"github.com/kelwin/gvdbgo/pointer"
)

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, OptionBundle, pointer.New(32, 200))

	h, order, err := ReadHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if order.String() != "LittleEndian" {
		t.Fatalf("expected little-endian order, got %v", order)
	}
	if !h.IsBundle() {
		t.Fatal("expected bundle flag set")
	}
	if h.Root != pointer.New(32, 200) {
		t.Fatalf("root pointer mismatch: %+v", h.Root)
	}
	if string(buf.Bytes()[0:8]) != "GVariant" {
		t.Fatalf("signature bytes mismatch: %q", buf.Bytes()[0:8])
	}
}

func TestReadHeaderRejectsBadSignature(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, 0, pointer.New(32, 32))
	b := buf.Bytes()
	b[0] = 0x00

	_, _, err := ReadHeader(b)
	if !errors.Is(err, gvdberr.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadHeaderRejectsShortInput(t *testing.T) {
	_, _, err := ReadHeader(make([]byte, 10))
	if !errors.Is(err, gvdberr.ErrDataOffset) {
		t.Fatalf("expected ErrDataOffset, got %v", err)
	}
}
