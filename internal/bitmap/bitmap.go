// Package bitmap provides the compressed row-ordinal set the planner and
// executor pass around as candidate and result sets.
package bitmap

import (
	"github.com/RoaringBitmap/roaring"
)

// Bitmap is a compressed set of row ordinals. The zero value is an empty
// bitmap ready to use. Operations never mutate their receiver or argument;
// each returns a new Bitmap, mirroring the value semantics the planner and
// executor assume when a subtree's result must be reused by a sibling.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New returns an empty bitmap.
func New() Bitmap {
	return Bitmap{rb: roaring.New()}
}

// FromRange returns the bitmap containing every ordinal in [0, n).
func FromRange(n uint32) Bitmap {
	rb := roaring.New()
	rb.AddRange(0, uint64(n))
	return Bitmap{rb: rb}
}

// FromSlice returns the bitmap containing exactly the given ordinals.
func FromSlice(ordinals []uint32) Bitmap {
	rb := roaring.BitmapOf(ordinals...)
	return Bitmap{rb: rb}
}

func (b Bitmap) backing() *roaring.Bitmap {
	if b.rb == nil {
		return roaring.New()
	}
	return b.rb
}

// Union returns b ∪ other.
func (b Bitmap) Union(other Bitmap) Bitmap {
	return Bitmap{rb: roaring.Or(b.backing(), other.backing())}
}

// Intersect returns b ∩ other.
func (b Bitmap) Intersect(other Bitmap) Bitmap {
	return Bitmap{rb: roaring.And(b.backing(), other.backing())}
}

// Difference returns b ∖ other.
func (b Bitmap) Difference(other Bitmap) Bitmap {
	return Bitmap{rb: roaring.AndNot(b.backing(), other.backing())}
}

// Cardinality returns |b|.
func (b Bitmap) Cardinality() int {
	return int(b.backing().GetCardinality())
}

// IsEmpty reports whether b has no ordinals.
func (b Bitmap) IsEmpty() bool {
	return b.backing().IsEmpty()
}

// Contains reports whether ordinal is a member of b.
func (b Bitmap) Contains(ordinal uint32) bool {
	return b.backing().Contains(ordinal)
}

// IsSubsetOf reports whether every ordinal in b is also in other.
func (b Bitmap) IsSubsetOf(other Bitmap) bool {
	return b.backing().Clone().AndNot(other.backing()).IsEmpty()
}

// ToSlice returns the ordinals of b in ascending order.
func (b Bitmap) ToSlice() []uint32 {
	return b.backing().ToArray()
}

// Iterate calls fn for every ordinal in ascending order, stopping early if
// fn returns false.
func (b Bitmap) Iterate(fn func(ordinal uint32) bool) {
	it := b.backing().Iterator()
	for it.HasNext() {
		if !fn(it.Next()) {
			return
		}
	}
}

// Equals reports whether b and other contain the same ordinals.
func (b Bitmap) Equals(other Bitmap) bool {
	return b.backing().Equals(other.backing())
}

// String returns a debug representation, e.g. for t.Logf in tests.
func (b Bitmap) String() string {
	return b.backing().String()
}
