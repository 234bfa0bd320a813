package gvdbfile

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/kelwin/gvdbgo/bloomfilter"
	"github.com/kelwin/gvdbgo/gvdberr"
	"github.com/kelwin/gvdbgo/gvdbhash"
	"github.com/kelwin/gvdbgo/pointer"
	"github.com/kelwin/gvdbgo/table"
	"github.com/kelwin/gvdbgo/variant"
)

const valueAlignment = 8

func alignUp(v uint32, n uint32) uint32 {
	if v%n == 0 {
		return v
	}
	return v + (n - v%n)
}

// planItem is one item of a table's planned, emission-ordered layout.
type planItem struct {
	key       []byte
	suffix    []byte
	hash      uint32
	typ       byte
	value     any
	parentIdx int32 // index into the owning plan's items, or -1 for a root
	keyStart  uint32
	valuePtr  pointer.Pointer
	nested    *tablePlan // set when typ == 'L'
}

// tablePlan is the fully-resolved layout of one GVDB hash table (root or
// nested), with every region's absolute file offset already computed.
type tablePlan struct {
	start, end uint32

	nBloomWords uint32
	nBuckets    uint32
	bucketHeads []uint32 // first item index per bucket; an empty bucket holds the next populated bucket's head, or nItems if none follows

	itemsOff uint32
	items    []planItem

	// keysOff is where the item array ends and the key-bytes region begins;
	// the table's own pointer covers [start, keysOff).
	keysOff uint32
}

// BuildOption configures Assemble.
type BuildOption func(*buildConfig)

type buildConfig struct {
	codec   variant.Codec
	options uint32
}

// WithCodec overrides the variant codec used to encode leaf values.
// Defaults to variant.DefaultCodec{}.
func WithCodec(c variant.Codec) BuildOption {
	return func(cfg *buildConfig) { cfg.codec = c }
}

// WithBundle sets the file header's bundle flag.
func WithBundle() BuildOption {
	return func(cfg *buildConfig) { cfg.options |= OptionBundle }
}

// Assemble lays out t (and any nested tables reachable from its 'L' items)
// into a single GVDB file byte buffer: hash table header, bloom filter,
// bucket array and item array, followed by the key-bytes region and the
// 8-byte-aligned value-payload region, with the file header written last
// pointing at the root table.
func Assemble(t *table.Table, opts ...BuildOption) ([]byte, error) {
	cfg := buildConfig{codec: variant.DefaultCodec{}}
	for _, o := range opts {
		o(&cfg)
	}

	plan, err := planTable(t, HeaderSize, cfg.codec)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, plan.end)
	emitTable(buf, plan)

	var header bytes.Buffer
	WriteHeader(&header, cfg.options, pointer.New(plan.start, plan.keysOff))
	copy(buf[0:HeaderSize], header.Bytes())

	return buf, nil
}

func planTable(t *table.Table, start uint32, codec variant.Codec) (*tablePlan, error) {
	type ordered struct {
		bucket int
		item   table.Item
	}

	var items []ordered
	t.Iter(func(b int, it table.Item) bool {
		items = append(items, ordered{bucket: b, item: it})
		return true
	})

	nItems := len(items)
	if uint64(nItems) > math.MaxUint32 {
		return nil, gvdberr.Consistency("item count exceeds uint32")
	}

	nBuckets := t.NBuckets()
	if nBuckets == 0 {
		nBuckets = 1
	}
	nBloomWords := bloomfilter.EstimateWords(nItems)

	bloomOff := start + 8
	bucketsOff := bloomOff + 4*nBloomWords
	itemsOff := bucketsOff + 4*uint32(nBuckets)
	keysOff := itemsOff + uint32(nItems)*hashItemSize

	planItems := make([]planItem, nItems)
	for i, o := range items {
		planItems[i] = planItem{
			key:       o.item.Key,
			hash:      o.item.Hash(),
			typ:       o.item.Typ,
			value:     o.item.Value,
			parentIdx: -1,
		}
	}

	assignParentsAndSuffixes(planItems)

	cursor := keysOff
	for i := range planItems {
		if len(planItems[i].suffix) > math.MaxUint16 {
			return nil, gvdberr.Consistency("key suffix exceeds 65535 bytes")
		}
		planItems[i].keyStart = cursor
		cursor += uint32(len(planItems[i].suffix))
	}

	cursor = alignUp(cursor, valueAlignment)

	for i := range planItems {
		cursor = alignUp(cursor, valueAlignment)

		switch planItems[i].typ {
		case 'v':
			payload, err := codec.Encode(planItems[i].value.(variant.Value))
			if err != nil {
				return nil, gvdberr.Variant(err)
			}
			planItems[i].valuePtr = pointer.New(cursor, cursor+uint32(len(payload)))
			planItems[i].value = payload
			cursor += uint32(len(payload))
		case 'L':
			nested, err := planTable(planItems[i].value.(*table.Table), cursor, codec)
			if err != nil {
				return nil, err
			}
			planItems[i].nested = nested
			planItems[i].valuePtr = pointer.New(nested.start, nested.keysOff)
			cursor = nested.end
		default:
			return nil, gvdberr.Unimplemented("unsupported item type tag")
		}
	}

	// bucketHeads[b] is the index of the first item belonging to bucket b.
	// Items are already grouped by ascending bucket (t.Iter order), so a
	// populated bucket's head is simply the index of its first occurrence.
	// An empty bucket must carry forward the head of the next populated
	// bucket rather than nItems, or the reader would treat the previous
	// populated bucket's range as extending past its own items.
	bucketHeads := make([]uint32, nBuckets)
	for b := range bucketHeads {
		bucketHeads[b] = uint32(nItems)
	}
	for i, o := range items {
		if bucketHeads[o.bucket] == uint32(nItems) {
			bucketHeads[o.bucket] = uint32(i)
		}
	}
	for b := int(nBuckets) - 2; b >= 0; b-- {
		if bucketHeads[b] == uint32(nItems) {
			bucketHeads[b] = bucketHeads[b+1]
		}
	}

	return &tablePlan{
		start:       start,
		end:         cursor,
		nBloomWords: nBloomWords,
		nBuckets:    uint32(nBuckets),
		bucketHeads: bucketHeads,
		itemsOff:    itemsOff,
		items:       planItems,
		keysOff:     keysOff,
	}, nil
}

// assignParentsAndSuffixes picks, for each item, the longest other item's
// full key that is a proper prefix of its own — guaranteeing a forest,
// since a parent's key is always strictly shorter than its child's.
func assignParentsAndSuffixes(items []planItem) {
	for i := range items {
		bestParent := -1
		bestLen := -1

		for j := range items {
			if i == j {
				continue
			}
			if len(items[j].key) >= len(items[i].key) {
				continue
			}
			if !bytes.HasPrefix(items[i].key, items[j].key) {
				continue
			}
			if len(items[j].key) > bestLen {
				bestLen = len(items[j].key)
				bestParent = j
			}
		}

		if bestParent == -1 {
			items[i].suffix = items[i].key
		} else {
			items[i].parentIdx = int32(bestParent)
			items[i].suffix = items[i].key[len(items[bestParent].key):]
		}
	}
}

func emitTable(buf []byte, p *tablePlan) {
	putU32(buf, p.start, p.nBloomWords)
	putU32(buf, p.start+4, p.nBuckets)

	bloom := bloomfilter.New(p.nBloomWords)
	for i := range p.items {
		bloom.Add(p.items[i].hash)
	}
	words := bloom.Words()
	bloomOff := p.start + 8
	for i, w := range words {
		putU32(buf, bloomOff+4*uint32(i), w)
	}

	bucketsOff := bloomOff + 4*uint32(len(words))
	for i, head := range p.bucketHeads {
		putU32(buf, bucketsOff+4*uint32(i), head)
	}

	for i := range p.items {
		emitItem(buf, p.itemsOff+uint32(i)*hashItemSize, p.items[i])

		if p.items[i].typ == 'L' {
			emitTable(buf, p.items[i].nested)
		}
	}
}

func emitItem(buf []byte, off uint32, it planItem) {
	parent := uint32(noParent)
	if it.parentIdx >= 0 {
		parent = uint32(it.parentIdx)
	}

	putU32(buf, off, it.hash)
	putU32(buf, off+4, parent)
	putU32(buf, off+8, it.keyStart)
	putU16(buf, off+12, uint16(len(it.suffix)))
	buf[off+14] = it.typ
	buf[off+15] = 0
	putU32(buf, off+16, it.valuePtr.Start)
	putU32(buf, off+20, it.valuePtr.End)

	copy(buf[it.keyStart:it.keyStart+uint32(len(it.suffix))], it.suffix)

	if it.typ == 'v' {
		payload := it.value.([]byte)
		copy(buf[it.valuePtr.Start:it.valuePtr.End], payload)
	}
}

func putU32(buf []byte, off uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

func putU16(buf []byte, off uint32, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

// hashOfFullKey exposes the djb_hash a table.Item would have recorded, for
// callers probing an assembled table (e.g. the S7 bloom-rejection test) without
// going through table.Table.
func hashOfFullKey(key []byte) uint32 { return gvdbhash.Hash(key) }
