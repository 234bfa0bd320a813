// Package bloomfilter implements the bloom filter embedded in a GVDB hash
// table: an array of u32 words addressed by a hashed key, used by the
// reader to cheaply reject keys that cannot be present and by the writer to
// seed those same bits while assembling a table.
//
// The bit-level storage is backed by bits-and-blooms/bitset so the word
// array and the membership test share one addressing scheme instead of two
// parallel bit-twiddling implementations.
package bloomfilter

import "github.com/bits-and-blooms/bitset"

// bloomShift is a format parameter fixed at 0 (see the writer/reader design
// notes on why this is not yet computed from table size). A conforming
// implementation accepts and emits shift 0 only.
const bloomShift = 0

// Filter is a GVDB bloom filter: nWords little-endian u32 words, each word
// holding 32 addressable bits.
type Filter struct {
	nWords uint32
	bits   *bitset.BitSet
}

// New allocates an all-zero filter of nWords words.
func New(nWords uint32) *Filter {
	return &Filter{nWords: nWords, bits: bitset.New(uint(nWords) * 32)}
}

// FromWords reconstructs a Filter from its on-disk word array, as read by
// the reader hash table.
func FromWords(words []uint32) *Filter {
	f := New(uint32(len(words)))
	for wi, w := range words {
		base := uint(wi) * 32
		for bit := uint(0); bit < 32; bit++ {
			if w&(1<<bit) != 0 {
				f.bits.Set(base + bit)
			}
		}
	}
	return f
}

// NWords reports the word count the filter was constructed with.
func (f *Filter) NWords() uint32 { return f.nWords }

func (f *Filter) positions(h uint32) (word uint32, bit0, bit1 uint) {
	word = (h / 32) % f.nWords
	bit0 = uint(h & 31)
	bit1 = uint((h >> bloomShift) & 31)
	return
}

// Add seeds the two bits a hash value maps to. A no-op on a zero-word
// filter (small tables may opt out of the bloom filter entirely).
func (f *Filter) Add(h uint32) {
	if f.nWords == 0 {
		return
	}
	word, b0, b1 := f.positions(h)
	base := uint(word) * 32
	f.bits.Set(base + b0)
	f.bits.Set(base + b1)
}

// MayContain reports whether an item with hash h could be present. false
// is a proof of absence; true only means "maybe". A zero-word filter
// (bloom filter disabled) always answers true, i.e. "consult the buckets".
func (f *Filter) MayContain(h uint32) bool {
	if f.nWords == 0 {
		return true
	}
	word, b0, b1 := f.positions(h)
	base := uint(word) * 32
	return f.bits.Test(base+b0) && f.bits.Test(base+b1)
}

// Words renders the filter back to its on-disk word array.
func (f *Filter) Words() []uint32 {
	out := make([]uint32, f.nWords)
	for wi := uint32(0); wi < f.nWords; wi++ {
		base := uint(wi) * 32
		var w uint32
		for bit := uint(0); bit < 32; bit++ {
			if f.bits.Test(base + bit) {
				w |= 1 << bit
			}
		}
		out[wi] = w
	}
	return out
}

// EstimateWords picks a bloom filter size for nItems entries: a power-of-two
// word count sized for roughly 8 bits per item, or 0 for small tables where
// a bloom filter isn't worth the space.
func EstimateWords(nItems int) uint32 {
	if nItems < 8 {
		return 0
	}

	bits := uint32(nItems) * 8
	words := (bits + 31) / 32

	var pow2 uint32 = 1
	for pow2 < words {
		pow2 <<= 1
	}
	return pow2
}
