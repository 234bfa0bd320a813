// Package gvdbhash implements djb_hash, the Bernstein string hash GVDB uses
// to place keys in a hash table's bucket array.
package gvdbhash

// Hash computes djb_hash over key: seed 5381, multiplier 33, modulo 2^32.
// It is computed over the entire logical (reconstructed) key, never over a
// per-item suffix alone.
func Hash(key []byte) uint32 {
	h := uint32(5381)
	for _, b := range key {
		h = h*33 + uint32(b)
	}
	return h
}

// HashString is Hash over the UTF-8 bytes of s.
func HashString(s string) uint32 {
	return Hash([]byte(s))
}
