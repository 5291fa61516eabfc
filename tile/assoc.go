package tile

// bucketCount covers every possible leading byte
const bucketCount = 256

// defaultMapped is the number of leading bytes seeded by the ASCII remap
// Byte 0xFF is left unmapped and resolves to 0
const defaultMapped = 255

type assocNode struct {
	key   Index
	index int32
	next  int32 // 1-based slot in overflow, 0 terminates the chain
}

// AssocTable maps glyph payloads to tilemap indices
// Lookup is a direct bucket access on the leading byte followed by a scan of
// a short overflow chain holding multi-byte and overridden glyphs
type AssocTable struct {
	buckets  [bucketCount]assocNode
	overflow []assocNode
}

// NewAssocTable returns a table seeded with the default ASCII remap
func NewAssocTable() *AssocTable {
	t := &AssocTable{}
	t.Reset()
	return t
}

// DefaultIndex is the seeded index for a single leading byte
// Control codes 1..31 move to the tail (97..127), printable ASCII 32..127
// moves to the front (1..96), bytes from 128 keep their value
func DefaultIndex(b byte) int32 {
	i := int32(b)
	switch {
	case b == 0:
		return 0
	case b < 32:
		return i + 96
	case b <= 127:
		return i - 31
	case int(b) >= defaultMapped:
		return 0
	default:
		return i
	}
}

// Reset drops all associations and reseeds the default remap
func (t *AssocTable) Reset() {
	t.overflow = t.overflow[:0]
	for i := 0; i < bucketCount; i++ {
		t.buckets[i] = assocNode{
			key:   Index{byte(i)},
			index: DefaultIndex(byte(i)),
		}
	}
}

// Len returns the number of associations stored outside the seeded buckets
func (t *AssocTable) Len() int {
	return len(t.overflow)
}

// find walks the chain for glyph's leading byte
func (t *AssocTable) find(glyph Index) *assocNode {
	node := &t.buckets[glyph[0]]
	for {
		if sameGlyph(node.key, glyph) {
			return node
		}
		if node.next == 0 {
			return nil
		}
		node = &t.overflow[node.next-1]
	}
}

// Set binds glyph to index, overwriting an existing binding in place
func (t *AssocTable) Set(glyph Index, index int32) {
	if node := t.find(glyph); node != nil {
		node.index = index
		return
	}
	head := &t.buckets[glyph[0]]
	t.overflow = append(t.overflow, assocNode{
		key:   glyph,
		index: index,
		next:  head.next,
	})
	head.next = int32(len(t.overflow))
}

// SetString binds the glyph bytes of s to index
func (t *AssocTable) SetString(s string, index int32) {
	t.Set(Glyph(s), index)
}

// Resolve returns the index bound to glyph
// Unbound glyphs fall back to their leading byte's seeded entry
func (t *AssocTable) Resolve(glyph Index) int32 {
	if node := t.find(glyph); node != nil {
		return node.index
	}
	return t.buckets[glyph[0]].index
}

// sameGlyph compares up to IndexSize bytes, stopping after a shared NUL
func sameGlyph(a, b Index) bool {
	for i := 0; i < IndexSize; i++ {
		if a[i] != b[i] {
			return false
		}
		if a[i] == 0 {
			break
		}
	}
	return true
}
