package setcache

// constError is an immutable string error, the same sentinel-error shape
// the teacher's error.go uses: comparable with ==, wrappable with %w, and
// impossible to mutate after construction.
type constError string

func (e constError) Error() string { return string(e) }

// ErrKeyAlreadyPresent is asserted by PutNoClobber/PutNoClobberPinned in
// verification builds (built with the setcache_debug tag) when the key is
// already present in its set — a violation of the caller's no-clobber
// contract. Release builds skip the check rather than pay for it.
const ErrKeyAlreadyPresent = constError("setcache: key already present")

// ErrAllWaysPinned panics out of PutNoClobberPinned when every way in the
// target set is reported pinned, so the CLOCK sweep can never land on a
// free or freeable slot. The caller is responsible for guaranteeing fewer
// than ways keys are pinned in any one set; this is a contract violation,
// not a recoverable runtime condition, which is why it panics instead of
// returning an error.
const ErrAllWaysPinned = constError("setcache: all ways pinned, clock sweep cannot make progress")

// ErrClockOverrun panics out of selectVictim when the sweep exceeds its
// bound of ways*(2^clock_bits-1)+1 iterations. That bound can only be
// exceeded if the counts arena holds a value outside [0, 2^clock_bits-1],
// which means something else has corrupted it.
const ErrClockOverrun = constError("setcache: clock sweep exceeded iteration bound")
