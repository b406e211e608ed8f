// Package gictest provides software models of GICv2 and GICv3
// controllers for testing the driver without hardware. The models
// implement mmio.Region (and v3.SysRegs for the system-register CPU
// interface) and track enough interrupt state to exercise the full
// acknowledge / EOI / deactivate lifecycle.
package gictest

// words is a bitmap packed into 32-bit register words, one bit per
// interrupt, matching the layout of the GICD bitmap register blocks.
type words []uint32

func newWords(maxIntID uint32) words {
	return make(words, (maxIntID+31)/32)
}

func (w words) get(bit uint32) bool {
	return w[bit/32]&(1<<(bit%32)) != 0
}

func (w words) set(bit uint32) {
	w[bit/32] |= 1 << (bit % 32)
}

func (w words) clear(bit uint32) {
	w[bit/32] &^= 1 << (bit % 32)
}

// index returns the word at idx, or 0 past the end; register reads
// beyond the implemented range are RAZ.
func (w words) index(idx uint32) uint32 {
	if idx >= uint32(len(w)) {
		return 0
	}
	return w[idx]
}

// w1s applies a write-1-to-set register write.
func (w words) w1s(idx, value uint32) {
	if idx < uint32(len(w)) {
		w[idx] |= value
	}
}

// w1c applies a write-1-to-clear register write.
func (w words) w1c(idx, value uint32) {
	if idx < uint32(len(w)) {
		w[idx] &^= value
	}
}

// store replaces a word, for read-write registers like IGROUPR.
func (w words) store(idx, value uint32) {
	if idx < uint32(len(w)) {
		w[idx] = value
	}
}

// Architecture revision values reported in PIDR2.
const (
	archRevGICv2 = 0x20
	archRevGICv3 = 0x30
)

const spurious = 1023

// writeCounter records how many times each register offset was
// written, so tests can assert that redundant hardware writes are
// skipped.
type writeCounter map[uint32]int

func (c writeCounter) note(off uint32) {
	c[off]++
}
