// Package bitmask iterates the set-bit positions of a small integer
// bitmask in ascending order.
package bitmask

import "math/bits"

// MaxWays is the widest mask an [Iterator] supports, matching the largest
// set-associativity a cache in this package allows.
const MaxWays = 16

// Iterator consumes a bitmask, yielding the index of each set bit from
// lowest to highest. The zero Iterator is exhausted.
type Iterator struct {
	mask uint16
}

// New returns an Iterator over the set bits of mask. Only the low MaxWays
// bits are meaningful.
func New(mask uint16) Iterator {
	return Iterator{mask: mask}
}

// Next returns the index of the lowest remaining set bit and clears it. ok
// is false once the mask is exhausted.
func (it *Iterator) Next() (way int, ok bool) {
	if it.mask == 0 {
		return 0, false
	}
	way = bits.TrailingZeros16(it.mask)
	it.mask &= it.mask - 1
	return way, true
}
