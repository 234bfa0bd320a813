package variant

import "testing"

func TestRoundTrip(t *testing.T) {
	codec := DefaultCodec{}

	values := []Value{
		String("world"),
		String(""),
		Bytes([]byte{0, 1, 2, 3, 255}),
		Bool(true),
		Bool(false),
		Byte(200),
		Int16(-1234),
		Uint16(54321),
		Int32(-123456789),
		Uint32(4000000000),
		Int64(-1),
		Uint64(1 << 63),
	}

	for _, v := range values {
		enc, err := codec.Encode(v)
		if err != nil {
			t.Fatalf("encode %v: %v", v, err)
		}

		dec, err := codec.Decode(enc)
		if err != nil {
			t.Fatalf("decode %v: %v", enc, err)
		}

		if !v.Equal(dec) {
			t.Fatalf("round trip mismatch: %+v != %+v", v, dec)
		}
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	codec := DefaultCodec{}

	if _, err := codec.Decode([]byte{byte(KindUint32), 1, 2}); err == nil {
		t.Fatal("expected error decoding truncated uint32")
	}

	if _, err := codec.Decode([]byte{byte(KindString), 'h', 'i'}); err == nil {
		t.Fatal("expected error decoding string without NUL terminator")
	}

	if _, err := codec.Decode(nil); err == nil {
		t.Fatal("expected error decoding empty payload")
	}
}
