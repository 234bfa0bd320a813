// Package table implements the writer's in-memory hash table: a
// closed-addressing chained map from a full logical key to a pending
// payload, used while the caller populates one GVDB hash table (root or a
// nested subtable) before the file assembler lays it out on disk.
//
// Chains are linked by an index into a single backing slice rather than by
// pointer, so the same O(1) head-prepend/remove an interior-mutable linked
// list gives you is available without reference counting or interior
// mutability: rewrites are index swaps into an arena.
package table

import (
	"bytes"

	"github.com/kelwin/gvdbgo/gvdbhash"
)

const (
	minBuckets      = 3
	growLoadFactor  = 1.0
	noNext    int32 = -1
)

// Item is one entry of the table: a full key, its payload, and the type
// tag ('v' for a variant leaf, 'L' for a nested table) the assembler needs
// to pick an encoding.
type Item struct {
	Key   []byte
	Typ   byte
	Value any

	hash uint32
	next int32
}

// Hash returns the djb_hash of the item's full key, precomputed at insert
// time and reused verbatim as HashItem.hash_value by the assembler.
func (it *Item) Hash() uint32 { return it.hash }

// Table is the writer's chained hash map. The zero value is not usable;
// construct with New.
type Table struct {
	buckets []int32
	items   []Item
}

// New returns an empty table with a small initial bucket count; Insert
// grows it as entries accumulate.
func New() *Table {
	t := &Table{}
	t.resizeBuckets(minBuckets)
	return t
}

func (t *Table) resizeBuckets(n int) {
	buckets := make([]int32, n)
	for i := range buckets {
		buckets[i] = noNext
	}

	for i := range t.items {
		t.items[i].next = noNext
	}

	for i := range t.items {
		b := int(t.items[i].hash % uint32(n))
		t.items[i].next = buckets[b]
		buckets[b] = int32(i)
	}

	t.buckets = buckets
}

func (t *Table) bucketIndex(h uint32) int {
	return int(h % uint32(len(t.buckets)))
}

func (t *Table) find(key []byte, h uint32) int32 {
	idx := t.buckets[t.bucketIndex(h)]
	for idx != noNext {
		if bytes.Equal(t.items[idx].Key, key) {
			return idx
		}
		idx = t.items[idx].next
	}
	return noNext
}

// Insert stores value under key, tagged typ. An existing entry for key has
// its value replaced in place: the chain order and item count are
// unchanged, matching the idempotent-overwrite requirement. A new key is
// prepended to its bucket's chain head.
func (t *Table) Insert(key []byte, typ byte, value any) {
	h := gvdbhash.Hash(key)

	if idx := t.find(key, h); idx != noNext {
		t.items[idx].Typ = typ
		t.items[idx].Value = value
		return
	}

	if len(t.items)+1 > int(float64(len(t.buckets))*growLoadFactor) {
		t.resizeBuckets(nextBucketCount(len(t.items) + 1))
	}

	b := t.bucketIndex(h)
	newIdx := int32(len(t.items))
	t.items = append(t.items, Item{
		Key:   append([]byte(nil), key...),
		Typ:   typ,
		Value: value,
		hash:  h,
		next:  t.buckets[b],
	})
	t.buckets[b] = newIdx
}

func nextBucketCount(nItems int) int {
	n := int(float64(nItems) / growLoadFactor)
	if n < minBuckets {
		n = minBuckets
	}
	return n
}

// Get returns the item stored under key, if any.
func (t *Table) Get(key []byte) (Item, bool) {
	h := gvdbhash.Hash(key)
	idx := t.find(key, h)
	if idx == noNext {
		return Item{}, false
	}
	return t.items[idx], true
}

// Remove unlinks key from its chain. It reports whether a removal
// occurred; item slots are tombstoned in place rather than compacted, since
// compaction would invalidate every other chain's next-index.
func (t *Table) Remove(key []byte) bool {
	h := gvdbhash.Hash(key)
	b := t.bucketIndex(h)

	prev := noNext
	idx := t.buckets[b]
	for idx != noNext {
		if bytes.Equal(t.items[idx].Key, key) {
			if prev == noNext {
				t.buckets[b] = t.items[idx].next
			} else {
				t.items[prev].next = t.items[idx].next
			}
			t.items[idx] = Item{hash: t.items[idx].hash, next: noNext}
			t.items[idx].Key = nil
			return true
		}
		prev = idx
		idx = t.items[idx].next
	}
	return false
}

// Count returns the number of distinct live keys.
func (t *Table) Count() int {
	n := 0
	for i := range t.items {
		if t.items[i].Key != nil {
			n++
		}
	}
	return n
}

// NBuckets returns the current bucket count.
func (t *Table) NBuckets() int { return len(t.buckets) }

// Iter yields (bucket index, item) for every live item, bucket order first
// and chain order (head to tail, i.e. most to least recently inserted)
// within a bucket. The assembler uses this to assign a deterministic,
// contiguous item array.
func (t *Table) Iter(yield func(bucket int, item Item) bool) {
	for b, head := range t.buckets {
		idx := head
		for idx != noNext {
			if t.items[idx].Key != nil {
				if !yield(b, t.items[idx]) {
					return
				}
			}
			idx = t.items[idx].next
		}
	}
}

// IterBucket yields only the chain rooted at bucket b.
func (t *Table) IterBucket(b int, yield func(item Item) bool) {
	idx := t.buckets[b]
	for idx != noNext {
		if t.items[idx].Key != nil {
			if !yield(t.items[idx]) {
				return
			}
		}
		idx = t.items[idx].next
	}
}
