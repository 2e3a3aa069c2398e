//go:build !setcache_debug

package setcache

// debugging gates the assert calls. Verification builds compile them in via
// the setcache_debug tag; release builds pay nothing for them, so the
// no-clobber check runs only in verification builds. The all-ways-pinned
// and clock-overrun conditions panic in every build.
const debugging = false

func assert(cond bool, message string) {}
