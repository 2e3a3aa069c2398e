package setcache

import (
	"fmt"
	"io"
)

// Inspect dumps per-set state to w: one line per set with its offset and
// clock hand, followed by one line per way with its occupancy, tag, and
// count. Values are not printed. It is purely diagnostic: it never mutates the cache and
// is safe to call at any time, including against an empty or
// partially-filled cache.
func (c *Cache[K, V]) Inspect(w io.Writer) error {
	ways := uint64(c.geometry.layout.Ways)
	for setIndex := uint64(0); setIndex < c.geometry.sets; setIndex++ {
		offset := setIndex * ways
		hand := c.clocks.Get(setIndex)
		if _, err := fmt.Fprintf(w, "set %d: offset=%d hand=%d\n", setIndex, offset, hand); err != nil {
			return err
		}
		for w2 := uint64(0); w2 < ways; w2++ {
			slot := offset + w2
			count := c.counts.Get(slot)
			tag := c.tags.Get(slot)
			occupied := count > 0
			if _, err := fmt.Fprintf(w, "  way %d: occupied=%v tag=%#x count=%d\n", w2, occupied, tag, count); err != nil {
				return err
			}
		}
	}
	return nil
}
