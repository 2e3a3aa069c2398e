package setcache

import "testing"

func validLayout() Layout {
	return Layout{
		Ways:          16,
		TagBits:       8,
		ClockBits:     2,
		CacheLineSize: 64,
	}
}

func TestDeriveGeometryValid(t *testing.T) {
	g, err := deriveGeometry(validLayout(), 2048, 8, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.sets != 128 {
		t.Errorf("sets = %d, want 128", g.sets)
	}
	if g.capacity != 2048 {
		t.Errorf("capacity = %d, want 2048", g.capacity)
	}
	if g.clockHandBits != 4 {
		t.Errorf("clockHandBits = %d, want 4", g.clockHandBits)
	}
}

func TestDeriveGeometryRejects(t *testing.T) {
	base := validLayout()

	cases := []struct {
		name     string
		mutate   func(*Layout)
		capacity uint64
		keySize  uintptr
		valSize  uintptr
	}{
		{"ways not allowed", func(l *Layout) { l.Ways = 3 }, 2048, 8, 8},
		{"tag_bits not allowed", func(l *Layout) { l.TagBits = 12 }, 2048, 8, 8},
		{"clock_bits not allowed", func(l *Layout) { l.ClockBits = 3 }, 2048, 8, 8},
		{"cache_line_size not power of two", func(l *Layout) { l.CacheLineSize = 60 }, 2048, 8, 8},
		{"capacity not power of two", func(l *Layout) {}, 2047, 8, 8},
		{"capacity not multiple of ways", func(l *Layout) {}, 2050, 8, 8},
		{"capacity less than ways", func(l *Layout) {}, 8, 8, 8},
		{"key size not power of two", func(l *Layout) {}, 2048, 3, 8},
		{"value size not power of two", func(l *Layout) {}, 2048, 8, 3},
		{"key larger than value", func(l *Layout) {}, 2048, 16, 8},
		{"key size not less than cache line", func(l *Layout) {}, 2048, 64, 64},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			layout := base
			c.mutate(&layout)
			if _, err := deriveGeometry(layout, c.capacity, c.keySize, c.valSize); err == nil {
				t.Errorf("expected error, got none")
			}
		})
	}
}

func TestDeriveGeometryExactDivisionPreconditions(t *testing.T) {
	// ways=16, tag_bits=16 with a 64-byte line: tags_per_line would need
	// (64*8)/(16*16)=2, which divides exactly; verify it's accepted.
	layout := validLayout()
	layout.TagBits = 16
	if _, err := deriveGeometry(layout, 2048, 8, 8); err != nil {
		t.Errorf("unexpected rejection of an exact-division layout: %v", err)
	}

	// ways=16, clock_bits=4, line=64: clocks_per_line = (64*8)/(16*4)=8, exact.
	layout2 := validLayout()
	layout2.ClockBits = 4
	if _, err := deriveGeometry(layout2, 2048, 8, 8); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}
}
