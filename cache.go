package setcache

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/kvgrid/setcache/internal/bitmask"
	"github.com/kvgrid/setcache/internal/packedarray"
)

// PinFunc reports whether the slot currently holding value must not be
// evicted. It receives a pointer so callers can identify pinning by
// pointer identity (cheap) instead of re-reading the value.
type PinFunc[V any] func(value *V) bool

// Cache is a fixed-capacity, set-associative CLOCK cache mapping keys of
// type K to values of type V. It provides O(1) point lookup and O(ways)
// insertion with an approximate-LRU eviction policy and support for
// pinning entries that must not be evicted.
//
// Cache is not safe for concurrent use; callers that share a Cache across
// goroutines must serialize access externally.
//
// Pointers returned by Get/PutNoClobber/PutNoClobberPinned are borrowed:
// valid until the next mutating call (Remove, PutNoClobber,
// PutNoClobberPinned, Reset, Deinit) on the same Cache.
type Cache[K comparable, V any] struct {
	geometry Geometry

	tags   packedarray.Array
	counts packedarray.Array
	clocks packedarray.Array
	values []V

	keyFromValue func(V) K
	hash         func(K) uint64
	equal        func(K, K) bool
}

// New allocates a Cache with room for capacity values, laid out according
// to layout. capacity must be a power of two and a multiple of
// layout.Ways. keyFromValue extracts the key a stored value was inserted
// under, hash computes its set index and tag, and equal compares two keys.
//
// New returns an error if layout, capacity, or the sizes of K/V violate any
// geometry precondition — a configuration failure, never deferred to a
// later operation — or if allocation fails.
func New[K comparable, V any](
	capacity uint64,
	layout Layout,
	keyFromValue func(V) K,
	hash func(K) uint64,
	equal func(K, K) bool,
) (*Cache[K, V], error) {
	var k K
	var v V
	geometry, err := deriveGeometry(layout, capacity, unsafe.Sizeof(k), unsafe.Sizeof(v))
	if err != nil {
		return nil, err
	}

	c := &Cache[K, V]{
		geometry:     geometry,
		keyFromValue: keyFromValue,
		hash:         hash,
		equal:        equal,
	}
	if err := c.allocate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache[K, V]) allocate() error {
	g := c.geometry
	tagWords, err := newLineAlignedWords(g.layout.TagBits, g.capacity, g.layout.CacheLineSize)
	if err != nil {
		return err
	}
	countWords, err := newLineAlignedWords(g.layout.ClockBits, g.capacity, g.layout.CacheLineSize)
	if err != nil {
		c.rollback(tagWords, nil, nil)
		return err
	}
	clockWords, err := newLineAlignedWords(g.clockHandBits, g.sets, g.layout.CacheLineSize)
	if err != nil {
		c.rollback(tagWords, countWords, nil)
		return err
	}

	tags, err := packedarray.Wrap(tagWords, g.layout.TagBits)
	if err != nil {
		return err
	}
	counts, err := packedarray.Wrap(countWords, g.layout.ClockBits)
	if err != nil {
		return err
	}
	clocks, err := packedarray.Wrap(clockWords, g.clockHandBits)
	if err != nil {
		return err
	}

	c.tags = tags
	c.counts = counts
	c.clocks = clocks
	c.values = make([]V, paddedValueCount(g.valueSize, g.capacity, g.layout.CacheLineSize))
	return nil
}

// rollback is a no-op under the Go garbage collector — there is nothing to
// free — but it documents the point at which a partial allocation would
// need to be unwound before New propagates the failure.
func (c *Cache[K, V]) rollback(_, _, _ []uint64) {}

// paddedValueCount rounds capacity up to a multiple of however many V's fit
// in one cache line, so the values arena's byte size is always a multiple
// of cacheLineSize and at least one cache line — the same arena-sizing
// invariant newLineAlignedWords gives the tags, counts, and clock-hand
// arenas. Logical slots stay addressed 0..capacity-1; the extra tail
// elements, if any, are never read or written. When a V is as large as or
// larger than a cache line, capacity*valueSize is already a multiple of
// cacheLineSize (guaranteed by deriveGeometry's mutual-divisibility check),
// so no padding is needed.
func paddedValueCount(valueSize uintptr, capacity uint64, cacheLineSize int) uint64 {
	if valueSize == 0 || cacheLineSize <= 0 || valueSize >= uintptr(cacheLineSize) {
		return capacity
	}
	perLine := uint64(cacheLineSize) / uint64(valueSize)
	lines := (capacity + perLine - 1) / perLine
	return lines * perLine
}

// newLineAlignedWords allocates zeroed backing words for a packed array of
// slots logical entries at width bits each, padded so the byte size is a
// multiple of cacheLineSize and at least one cache line.
func newLineAlignedWords(width int, slots uint64, cacheLineSize int) ([]uint64, error) {
	if width <= 0 || cacheLineSize <= 0 {
		return nil, fmt.Errorf("setcache: invalid width=%d cache_line_size=%d", width, cacheLineSize)
	}
	slotsPerWord := uint64(64 / width)
	neededWords := (slots + slotsPerWord - 1) / slotsPerWord
	wordsPerLine := uint64(cacheLineSize / 8)
	if wordsPerLine == 0 {
		wordsPerLine = 1
	}
	lines := (neededWords + wordsPerLine - 1) / wordsPerLine
	if lines == 0 {
		lines = 1
	}
	return make([]uint64, lines*wordsPerLine), nil
}

// Deinit drops the Cache's references to its four arenas. Go is garbage
// collected, so there is no explicit free; dropping the references is the
// closest analogue to an allocator release, and it also makes a later Get,
// Remove, or PutNoClobber on this Cache panic on a nil slice rather than
// read stale state. Pointers already returned by Get or PutNoClobber keep
// the old values arena alive and still read it.
func (c *Cache[K, V]) Deinit() {
	c.tags = packedarray.Array{}
	c.counts = packedarray.Array{}
	c.clocks = packedarray.Array{}
	c.values = nil
}

// Reset empties the cache without freeing memory: tags, counts, and clock
// hands are zeroed; value bytes are left unspecified, to be re-keyed on the
// next insertion.
func (c *Cache[K, V]) Reset() {
	c.tags.Zero()
	c.counts.Zero()
	c.clocks.Zero()
}

// Sets reports the number of sets in the cache.
func (c *Cache[K, V]) Sets() uint64 { return c.geometry.sets }

// Capacity reports the total slot count.
func (c *Cache[K, V]) Capacity() uint64 { return c.geometry.capacity }

// associate computes the set index, tag, and slot-offset for key.
func (c *Cache[K, V]) associate(key K) (setIndex, tag, offset uint64) {
	h := c.hash(key)
	log2Sets := uint(bits.TrailingZeros64(c.geometry.sets))
	setIndex = h & (c.geometry.sets - 1)
	tagMask := uint64(1)<<c.geometry.layout.TagBits - 1
	tag = (h >> log2Sets) & tagMask
	offset = setIndex * uint64(c.geometry.layout.Ways)
	return setIndex, tag, offset
}

// matchesBitmask produces a ways-bit mask with bit w set iff tags[w]
// equals queryTag. It is written as a flat loop over all ways with no
// early exit so the compiler's auto-vectorizer has the best chance of
// turning it into a SIMD equality splat (see DESIGN.md "Vectorized tag
// comparison").
func matchesBitmask(tags []uint64, queryTag uint64) uint16 {
	var mask uint16
	for w, t := range tags {
		if t == queryTag {
			mask |= 1 << uint(w)
		}
	}
	return mask
}

// tagMatches copies the ways tags of the set at offset into a reusable
// scratch buffer, then returns the match bitmask against tag.
func (c *Cache[K, V]) tagMatches(offset, tag uint64, scratch []uint64) uint16 {
	ways := c.geometry.layout.Ways
	for w := 0; w < ways; w++ {
		scratch[w] = c.tags.Get(offset + uint64(w))
	}
	return matchesBitmask(scratch[:ways], tag)
}

// search finds the way within the set at offset holding key, corroborating
// tag matches against occupancy and key equality.
func (c *Cache[K, V]) search(offset, tag uint64, key K) (way int, found bool) {
	var scratch [16]uint64
	mask := c.tagMatches(offset, tag, scratch[:])
	it := bitmask.New(mask)
	for {
		w, ok := it.Next()
		if !ok {
			return 0, false
		}
		slot := offset + uint64(w)
		if c.counts.Get(slot) > 0 && c.equal(c.keyFromValue(c.values[slot]), key) {
			return w, true
		}
	}
}

// Get returns a borrowed reference to the value stored for key, if
// present, and saturate-increments its reference counter. It returns
// false, nil on a miss and never mutates tags, clocks, or values.
func (c *Cache[K, V]) Get(key K) (*V, bool) {
	_, tag, offset := c.associate(key)
	w, found := c.search(offset, tag, key)
	if !found {
		return nil, false
	}
	slot := offset + uint64(w)
	max := uint64(1)<<c.geometry.layout.ClockBits - 1
	if count := c.counts.Get(slot); count < max {
		c.counts.Set(slot, count+1)
	}
	return &c.values[slot], true
}

// Remove frees key's slot, if present. Its tag is left as-is; occupancy is
// gated by the counter, not the tag. A second Remove of an already-absent
// key is a no-op.
func (c *Cache[K, V]) Remove(key K) {
	_, tag, offset := c.associate(key)
	w, found := c.search(offset, tag, key)
	if !found {
		return
	}
	c.counts.Set(offset+uint64(w), 0)
}

// PutNoClobber selects a slot for key via CLOCK eviction and returns a
// borrowed reference the caller must initialize with a value whose
// KeyFromValue(value) == key before the next mutating call.
//
// The caller must guarantee key is not already present; in verification
// builds (setcache_debug) this is asserted.
func (c *Cache[K, V]) PutNoClobber(key K) *V {
	return c.PutNoClobberPinned(key, nil)
}

// PutNoClobberPinned is PutNoClobber with a pin predicate: ways whose
// current value is reported pinned by pin(value) are skipped by the CLOCK
// sweep without being decremented. When pin is nil, pinning is constantly
// false. Any context the predicate needs is carried via closure capture
// rather than threaded as a separate parameter, preserving the
// pointer-based pin checks PinFunc is built around. The caller must
// guarantee fewer than ways keys are pinned in any one set; violating this
// triggers ErrAllWaysPinned.
func (c *Cache[K, V]) PutNoClobberPinned(key K, pin PinFunc[V]) *V {
	_, tag, offset := c.associate(key)
	if debugging {
		_, found := c.search(offset, tag, key)
		assert(!found, string(ErrKeyAlreadyPresent))
	}

	w := c.selectVictim(offset, pin)
	ways := uint64(c.geometry.layout.Ways)
	c.clocks.Set(offset/ways, (uint64(w)+1)%ways)
	slot := offset + uint64(w)
	c.tags.Set(slot, tag)
	c.counts.Set(slot, 1)
	return &c.values[slot]
}

// selectVictim runs the CLOCK-with-pinning sweep over the set at offset
// and returns the way it stops on. It is guaranteed to stop within
// ways*(2^clock_bits-1)+1 iterations for a set that is not fully pinned:
// each full revolution of the hand that finds no count already at 0 drains
// at least one unit from the set's total remaining count budget of
// ways*(2^clock_bits-1), and the +1 accounts for the final landing
// iteration itself.
func (c *Cache[K, V]) selectVictim(offset uint64, pin PinFunc[V]) int {
	ways := uint64(c.geometry.layout.Ways)
	setIndex := offset / ways
	hand := c.clocks.Get(setIndex)

	max := uint64(1)<<c.geometry.layout.ClockBits - 1
	bound := ways*max + 1

	var consecutivePinned uint64
	for iter := uint64(0); ; iter++ {
		if iter >= bound {
			if debugging {
				assert(false, string(ErrClockOverrun))
			}
			panic(ErrClockOverrun)
		}
		slot := offset + hand
		if pin != nil && pin(&c.values[slot]) {
			consecutivePinned++
			if consecutivePinned >= ways {
				if debugging {
					assert(false, string(ErrAllWaysPinned))
				}
				panic(ErrAllWaysPinned)
			}
			hand = (hand + 1) % ways
			continue
		}
		consecutivePinned = 0
		count := c.counts.Get(slot)
		if count == 0 {
			return int(hand)
		}
		count--
		c.counts.Set(slot, count)
		if count == 0 {
			return int(hand)
		}
		hand = (hand + 1) % ways
	}
}

