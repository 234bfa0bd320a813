package gvdbfile

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/kelwin/gvdbgo/bloomfilter"
	"github.com/kelwin/gvdbgo/gvdberr"
	"github.com/kelwin/gvdbgo/gvdbhash"
	"github.com/kelwin/gvdbgo/pointer"
)

// hashItemSize is the fixed on-disk size of a HashItem: 4+4+4+2+1+1+8.
const hashItemSize = 24

// bloomWordsMask keeps only the low 27 bits of the bloom word count
// significant; the upper bits are reserved.
const bloomWordsMask = 0x07FFFFFF

// hashItem mirrors the on-disk HashItem record.
type hashItem struct {
	hashValue uint32
	parent    uint32
	keyStart  uint32
	keySize   uint16
	typ       byte
	value     pointer.Pointer
}

const noParent = 0xFFFFFFFF

// HashTable interprets a byte slice as a GVDB hash table: a header, a bloom
// filter, a bucket array and a packed item array, per the root pointer that
// locates it.
type HashTable struct {
	data  []byte
	order binary.ByteOrder

	tableEnd uint32
	itemsOff uint32

	nBuckets uint32
	buckets  []uint32

	bloom *bloomfilter.Filter

	// BucketScans counts the bucket-range items Get reads (parent-chain reads
	// made while verifying a name are not counted), for tests that
	// want to observe a bloom-filter rejection never touching a bucket.
	BucketScans int
}

// NewHashTable constructs a HashTable over data at the byte range named by
// at, validating the header and derived region offsets.
func NewHashTable(data []byte, order binary.ByteOrder, at pointer.Pointer) (*HashTable, error) {
	if uint64(at.Start)+8 > uint64(at.End) {
		return nil, gvdberr.DataOffset("hash table header", at.Start+8, at.End)
	}

	rawBloomWords, err := pointer.ReadU32(data, at.Start, order)
	if err != nil {
		return nil, err
	}
	nBuckets, err := pointer.ReadU32(data, at.Start+4, order)
	if err != nil {
		return nil, err
	}

	nBloomWords := rawBloomWords & bloomWordsMask

	bloomOff := at.Start + 8
	bucketsOff := bloomOff + 4*nBloomWords
	itemsOff := bucketsOff + 4*nBuckets

	if uint64(bloomOff) > uint64(at.End) || uint64(bucketsOff) > uint64(at.End) || uint64(itemsOff) > uint64(at.End) {
		return nil, gvdberr.DataOffset("hash table region", itemsOff, at.End)
	}

	remainder := at.End - itemsOff
	if remainder%hashItemSize != 0 {
		return nil, gvdberr.DataErrorf("item array remainder %d is not a multiple of %d", remainder, hashItemSize)
	}

	words := make([]uint32, nBloomWords)
	for i := uint32(0); i < nBloomWords; i++ {
		w, err := pointer.ReadU32(data, bloomOff+4*i, order)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}

	buckets := make([]uint32, nBuckets)
	for i := uint32(0); i < nBuckets; i++ {
		b, err := pointer.ReadU32(data, bucketsOff+4*i, order)
		if err != nil {
			return nil, err
		}
		buckets[i] = b
	}

	return &HashTable{
		data:     data,
		order:    order,
		tableEnd: at.End,
		itemsOff: itemsOff,
		nBuckets: nBuckets,
		buckets:  buckets,
		bloom:    bloomfilter.FromWords(words),
	}, nil
}

// NItems returns the number of packed items in the item array.
func (t *HashTable) NItems() uint32 {
	return (t.tableEnd - t.itemsOff) / hashItemSize
}

func (t *HashTable) readItem(i uint32) (hashItem, error) {
	off := t.itemsOff + i*hashItemSize

	hashValue, err := pointer.ReadU32(t.data, off, t.order)
	if err != nil {
		return hashItem{}, err
	}
	parent, err := pointer.ReadU32(t.data, off+4, t.order)
	if err != nil {
		return hashItem{}, err
	}
	keyStart, err := pointer.ReadU32(t.data, off+8, t.order)
	if err != nil {
		return hashItem{}, err
	}
	keySize, err := pointer.ReadU16(t.data, off+12, t.order)
	if err != nil {
		return hashItem{}, err
	}
	if off+14 >= uint32(len(t.data)) {
		return hashItem{}, gvdberr.DataOffset("item type tag", off+14, uint32(len(t.data)))
	}
	typ := t.data[off+14]
	value, err := pointer.ReadPointer(t.data, off+16, t.order)
	if err != nil {
		return hashItem{}, err
	}

	return hashItem{
		hashValue: hashValue,
		parent:    parent,
		keyStart:  keyStart,
		keySize:   keySize,
		typ:       typ,
		value:     value,
	}, nil
}

func (t *HashTable) suffix(it hashItem) ([]byte, error) {
	end := it.keyStart + uint32(it.keySize)
	if uint64(end) > uint64(len(t.data)) {
		return nil, gvdberr.DataOffset("key bytes", end, uint32(len(t.data)))
	}
	return t.data[it.keyStart:end], nil
}

// checkName verifies that item's full key equals key, walking the parent
// chain to reassemble it. depth bounds the walk to the item count so a
// parent cycle is detected rather than looped forever.
func (t *HashTable) checkName(it hashItem, key []byte, depth uint32) (bool, error) {
	if depth > t.NItems() {
		return false, nil // parent cycle; surfaced as "not found" to Get
	}

	suf, err := t.suffix(it)
	if err != nil {
		return false, err
	}
	if len(suf) > len(key) {
		return false, nil
	}
	tail := key[len(key)-len(suf):]
	if !bytes.Equal(tail, suf) {
		return false, nil
	}

	if it.parent == noParent {
		return len(suf) == len(key), nil
	}

	if it.parent >= t.NItems() {
		return false, nil
	}

	parentItem, err := t.readItem(it.parent)
	if err != nil {
		return false, err
	}
	return t.checkName(parentItem, key[:len(key)-len(suf)], depth+1)
}

// Get looks up key, requiring the found item's type tag to equal wantTyp
// ('v' or 'L'). The bloom filter, when present, can reject a miss without
// touching the bucket array at all.
func (t *HashTable) Get(key []byte, wantTyp byte) (pointer.Pointer, bool, error) {
	h := gvdbhash.Hash(key)

	if !t.bloom.MayContain(h) {
		return pointer.Pointer{}, false, nil
	}

	if t.nBuckets == 0 || t.NItems() == 0 {
		return pointer.Pointer{}, false, nil
	}

	bucket := h % t.nBuckets
	first := t.buckets[bucket]
	nItems := t.NItems()

	var last uint32
	if bucket == t.nBuckets-1 {
		last = nItems
	} else {
		last = t.buckets[bucket+1]
		if last > nItems {
			last = nItems
		}
	}

	for i := first; i < last && i < nItems; i++ {
		item, err := t.readItem(i)
		if err != nil {
			return pointer.Pointer{}, false, err
		}
		t.BucketScans++

		if item.hashValue != h {
			continue
		}

		ok, err := t.checkName(item, key, 0)
		if err != nil {
			return pointer.Pointer{}, false, err
		}
		if ok && item.typ == wantTyp {
			return item.value, true, nil
		}
	}

	return pointer.Pointer{}, false, nil
}

// List reconstructs the full key of every item in the table.
func (t *HashTable) List() ([]string, error) {
	n := t.NItems()
	items := make([]hashItem, n)
	for i := uint32(0); i < n; i++ {
		item, err := t.readItem(i)
		if err != nil {
			return nil, err
		}
		items[i] = item
		if item.parent != noParent && item.parent >= n {
			return nil, gvdberr.DataError("invalid parent")
		}
	}

	full := make([][]byte, n)
	known := make([]bool, n)
	remaining := n

	for remaining > 0 {
		progressed := false

		for i := uint32(0); i < n; i++ {
			if known[i] {
				continue
			}

			suf, err := t.suffix(items[i])
			if err != nil {
				return nil, err
			}

			if items[i].parent == noParent {
				full[i] = suf
				known[i] = true
				remaining--
				progressed = true
				continue
			}

			if known[items[i].parent] {
				key := append(append([]byte(nil), full[items[i].parent]...), suf...)
				full[i] = key
				known[i] = true
				remaining--
				progressed = true
			}
		}

		if !progressed {
			return nil, gvdberr.ErrInvalidData
		}
	}

	out := make([]string, n)
	for i := uint32(0); i < n; i++ {
		if !utf8.Valid(full[i]) {
			return nil, gvdberr.ErrUTF8
		}
		out[i] = string(full[i])
	}
	return out, nil
}
