package hashutil_test

import (
	"testing"

	"github.com/kvgrid/setcache/hashutil"
)

func TestSum64Deterministic(t *testing.T) {
	a := hashutil.Sum64([]byte("hello"))
	b := hashutil.Sum64([]byte("hello"))
	if a != b {
		t.Errorf("Sum64 not deterministic: %d != %d", a, b)
	}
	if c := hashutil.Sum64([]byte("hellp")); c == a {
		t.Errorf("Sum64(%q) == Sum64(%q), want distinct digests", "hellp", "hello")
	}
}

func TestSum64UintMatchesByteEncoding(t *testing.T) {
	got := hashutil.Sum64Uint64(1)
	if got != hashutil.Sum64Uint64(1) {
		t.Error("Sum64Uint64 not deterministic")
	}
	if got == hashutil.Sum64Uint64(2) {
		t.Error("Sum64Uint64(1) == Sum64Uint64(2)")
	}
	if got != hashutil.Sum64([]byte{1, 0, 0, 0, 0, 0, 0, 0}) {
		t.Error("Sum64Uint64(1) differs from Sum64 of its little-endian bytes")
	}
}

func TestSum64StringMatchesSum64(t *testing.T) {
	if hashutil.Sum64String("abc") != hashutil.Sum64([]byte("abc")) {
		t.Error("Sum64String and Sum64 disagree for the same bytes")
	}
}
