package gictest

import "testing"

func TestWords(t *testing.T) {
	w := newWords(128)
	if len(w) != 4 {
		t.Fatalf("newWords(128) has %d words, want 4", len(w))
	}
	w.set(37)
	if !w.get(37) {
		t.Fatalf("bit 37 not set")
	}
	if w.index(1) != 1<<5 {
		t.Fatalf("word 1 = %#x, want %#x", w.index(1), uint32(1<<5))
	}
	w.w1c(1, 1<<5)
	if w.get(37) {
		t.Fatalf("bit 37 survived w1c")
	}
	// Out-of-range accesses are RAZ/WI like the hardware's.
	if w.index(99) != 0 {
		t.Fatalf("out-of-range read not zero")
	}
	w.w1s(99, 0xFFFFFFFF)
}

func TestWakerHandshake(t *testing.T) {
	m := NewV3(V3Options{})
	r := m.Redist()

	if r.Read32(redistWaker)&redistWakerChildren == 0 {
		t.Fatalf("redistributor not asleep at reset")
	}
	r.Write32(redistWaker, r.Read32(redistWaker)&^uint32(redistWakerSleep))
	if r.Read32(redistWaker)&redistWakerChildren != 0 {
		t.Fatalf("children still asleep after clearing ProcessorSleep")
	}
}
