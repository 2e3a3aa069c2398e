// Package setcache implements a fixed-capacity, set-associative [Cache]
// with CLOCK-based approximate-LRU eviction and support for pinning
// entries that must not be evicted.
//
// The design follows a classic hardware set-associative structure:
// capacity is divided into sets, each holding a fixed number of ways;
// a key's set is chosen by the low bits of its hash, and a per-slot tag
// (the hash's high bits) lets a lookup filter candidates within the set
// before comparing keys. Eviction within a set uses a multi-bit CLOCK hand
// rather than true LRU, trading a little precision for O(1) bookkeeping.
//
// Glossary and invariants:
//
//   - Way
//
//     One of Layout.Ways slots within a single set; the set-associative
//     degree.
//
//   - Set
//
//     The group of Ways slots a key may occupy, selected by the low bits
//     of its hash.
//
//   - Tag
//
//     High bits of the hash, stored per slot, filtering candidates within
//     a set without reading the full key. Tag collisions are tolerated;
//     key comparison disambiguates them.
//
//   - Clock hand
//
//     Per-set cursor advanced during insertion to amortize eviction
//     across ways.
//
//   - Counter (reference count)
//
//     Per-slot multi-bit field. Incremented (saturating) on a Get hit,
//     decremented as the CLOCK hand passes, slot becomes free at zero. A
//     slot is occupied iff its counter is nonzero — its tag is never
//     authoritative on its own.
//
//   - Pinned
//
//     Currently in use; must not be evicted by an insertion. The caller
//     must guarantee fewer than Ways keys are pinned in any one set.
//
//   - Slot
//
//     A (set, way) pair; the unit of storage.
//
// Layout constraints (validated eagerly by [New], never deferred to a
// later operation):
//
//   - Ways ∈ {2, 4, 16}, TagBits ∈ {8, 16}, ClockBits ∈ {1, 2, 4}.
//   - capacity is a power of two, >= Ways, and a multiple of Ways.
//   - sets = capacity / Ways is a power of two.
//   - sizeof(K) <= sizeof(V); both are powers of two.
//   - CacheLineSize is a power of two; every arena's byte size is a
//     multiple of it and at least one cache line.
package setcache
