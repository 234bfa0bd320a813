package gvdbhash

import "testing"

func TestHashDeterministic(t *testing.T) {
	keys := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("hello"),
		[]byte("/some/long/hierarchical/key"),
		{0, 1, 2, 255, 254},
	}

	for _, k := range keys {
		a := Hash(k)
		b := Hash(append([]byte(nil), k...))
		if a != b {
			t.Fatalf("hash not deterministic for %q: %d != %d", k, a, b)
		}
	}
}

func TestHashKnownValues(t *testing.T) {
	tests := []struct {
		key  string
		want uint32
	}{
		{"", 5381},
		{"a", 5381*33 + 'a'},
		{"hello", 0xf923099},
	}

	for _, tt := range tests {
		if got := HashString(tt.key); got != tt.want {
			t.Fatalf("Hash(%q) = %#x, want %#x", tt.key, got, tt.want)
		}
	}
}

func TestHashDistinguishesSuffixVsFullKey(t *testing.T) {
	if HashString("b") == HashString("/a/b") {
		t.Fatal("suffix and full key should not coincidentally hash equal here")
	}
}
