package mmio

import "testing"

func TestMemAccessWidths(t *testing.T) {
	m := NewMem(64)

	m.Write32(0, 0x11223344)
	if got := m.Read32(0); got != 0x11223344 {
		t.Fatalf("Read32 = %#x", got)
	}
	if got := m.Read8(0); got != 0x44 {
		t.Fatalf("little-endian low byte = %#x", got)
	}

	m.Write64(8, 0x0102030405060708)
	if got := m.Read64(8); got != 0x0102030405060708 {
		t.Fatalf("Read64 = %#x", got)
	}
	if got := m.Read32(8); got != 0x05060708 {
		t.Fatalf("low word of 64-bit write = %#x", got)
	}

	m.Write8(16, 0xAB)
	if got := m.Read8(16); got != 0xAB {
		t.Fatalf("Read8 = %#x", got)
	}
}

func TestOffsetRegion(t *testing.T) {
	m := NewMem(0x200)
	sub := Offset(m, 0x100)
	sub.Write32(4, 0xdeadbeef)
	if got := m.Read32(0x104); got != 0xdeadbeef {
		t.Fatalf("offset write landed at wrong address: %#x", got)
	}

	// Nested offsets collapse into one.
	nested := Offset(sub, 0x10)
	nested.Write32(0, 1)
	if got := m.Read32(0x110); got != 1 {
		t.Fatalf("nested offset write misplaced")
	}
}
