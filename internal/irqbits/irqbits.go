// Package irqbits implements the 32-interrupts-per-word register
// arithmetic shared by the distributor and redistributor: set/clear
// register pairs where writing 1 acts on a bit and writing 0 is
// ignored, and plain read-modify-write registers.
package irqbits

import "github.com/tinyrange/gic/mmio"

// Set writes the single bit for intid into the register array at base.
// Intended for W1S/W1C registers (ISENABLER, ICENABLER, ISPENDR, ...),
// where the zero bits of the write have no effect.
func Set(r mmio.Region, base, intid uint32) {
	r.Write32(base+4*(intid/32), 1<<(intid%32))
}

// Get reports the bit for intid in the register array at base.
func Get(r mmio.Region, base, intid uint32) bool {
	return r.Read32(base+4*(intid/32))&(1<<(intid%32)) != 0
}

// SetRMW sets the bit for intid in a plain read/write register array
// (IGROUPR, IGRPMODR, INMIR).
func SetRMW(r mmio.Region, base, intid uint32) {
	off := base + 4*(intid/32)
	bit := uint32(1) << (intid % 32)
	old := r.Read32(off)
	if old&bit != 0 {
		return
	}
	r.Write32(off, old|bit)
}

// ClearRMW clears the bit for intid in a plain read/write register
// array, skipping the bus write when the bit is already clear.
func ClearRMW(r mmio.Region, base, intid uint32) {
	off := base + 4*(intid/32)
	bit := uint32(1) << (intid % 32)
	old := r.Read32(off)
	if old&bit == 0 {
		return
	}
	r.Write32(off, old&^bit)
}

// SetTrigger updates the 2-bit configuration field for intid in an
// ICFGR-style register array. Only the upper bit of each field is
// architecturally meaningful: set means edge, clear means level.
func SetTrigger(r mmio.Region, base, intid uint32, edge bool) {
	off := base + 4*(intid/16)
	bit := uint32(1) << ((intid%16)*2 + 1)
	old := r.Read32(off)
	if edge {
		r.Write32(off, old|bit)
	} else {
		r.Write32(off, old&^bit)
	}
}

// TriggerIsEdge reports the upper configuration bit for intid in an
// ICFGR-style register array.
func TriggerIsEdge(r mmio.Region, base, intid uint32) bool {
	off := base + 4*(intid/16)
	bit := uint32(1) << ((intid%16)*2 + 1)
	return r.Read32(off)&bit != 0
}

// SetAll writes all-ones into as many words of the register array at
// base as are needed to cover max interrupts, clamped to words
// registers. Used by the bulk reset helpers during global init.
func SetAll(r mmio.Region, base, max, words uint32) {
	n := (max + 31) / 32
	if n > words {
		n = words
	}
	for i := uint32(0); i < n; i++ {
		r.Write32(base+4*i, ^uint32(0))
	}
}

// ZeroAll writes zero into as many words of the register array at base
// as are needed to cover max interrupts, clamped to words registers.
func ZeroAll(r mmio.Region, base, max, words uint32) {
	n := (max + 31) / 32
	if n > words {
		n = words
	}
	for i := uint32(0); i < n; i++ {
		r.Write32(base+4*i, 0)
	}
}
