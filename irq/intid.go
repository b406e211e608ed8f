// Package irq models the interrupt identifier space of the ARM Generic
// Interrupt Controller: INTID ranges, category predicates and the
// device-tree interrupt-specifier decode.
package irq

import "fmt"

// Architectural INTID ranges. Fixed by the GIC specification, not by
// configuration.
const (
	sgiStart uint32 = 0
	sgiEnd   uint32 = 16

	ppiStart uint32 = 16
	ppiEnd   uint32 = 32

	spiStart uint32 = 32
	spiEnd   uint32 = 1020

	specialStart uint32 = 1020
	specialEnd   uint32 = 1024

	eppiStart uint32 = 1056
	eppiEnd   uint32 = 1120

	espiStart uint32 = 4096
	espiEnd   uint32 = 5120

	lpiStart uint32 = 8192
)

// Spurious is the "no interrupt pending" sentinel returned by an
// acknowledge read. It must never be written back to an EOI or
// deactivate register.
const Spurious IntID = 1023

// IntID is a GIC interrupt identifier. Values produced by the checked
// constructors are always inside an architectural range; Raw is the
// only way to bypass validation.
type IntID uint32

// SGI returns the IntID of a software-generated interrupt.
// Panics if n is not in 0..15.
func SGI(n uint32) IntID {
	if n >= sgiEnd {
		panic(fmt.Sprintf("irq: SGI %d out of range 0..15", n))
	}
	return IntID(n)
}

// PPI returns the IntID of a private peripheral interrupt, counted
// from the start of the PPI range. Panics if n is not in 0..15.
func PPI(n uint32) IntID {
	if n >= ppiEnd-ppiStart {
		panic(fmt.Sprintf("irq: PPI %d out of range 0..15", n))
	}
	return IntID(ppiStart + n)
}

// SPI returns the IntID of a shared peripheral interrupt, counted from
// the start of the SPI range. Panics if the result would leave the SPI
// range.
func SPI(n uint32) IntID {
	if n >= spiEnd-spiStart {
		panic(fmt.Sprintf("irq: SPI %d out of range 0..%d", n, spiEnd-spiStart-1))
	}
	return IntID(spiStart + n)
}

// EPPI returns the IntID of an extended PPI (GICv3). Panics if n is
// not in 0..63.
func EPPI(n uint32) IntID {
	if n >= eppiEnd-eppiStart {
		panic(fmt.Sprintf("irq: EPPI %d out of range 0..%d", n, eppiEnd-eppiStart-1))
	}
	return IntID(eppiStart + n)
}

// ESPI returns the IntID of an extended SPI (GICv3). Panics if n is
// not in 0..1023.
func ESPI(n uint32) IntID {
	if n >= espiEnd-espiStart {
		panic(fmt.Sprintf("irq: ESPI %d out of range 0..%d", n, espiEnd-espiStart-1))
	}
	return IntID(espiStart + n)
}

// LPI returns the IntID of a locality-specific peripheral interrupt
// (GICv3). Panics if n would fall below the LPI base.
func LPI(n uint32) IntID {
	id := lpiStart + n
	if id < lpiStart {
		panic(fmt.Sprintf("irq: LPI %d overflows", n))
	}
	return IntID(id)
}

// Raw wraps an arbitrary 32-bit value as an IntID without validation.
// It exists for low-level register decode, where the hardware already
// guarantees the value; everything else should use the checked
// constructors.
func Raw(v uint32) IntID { return IntID(v) }

// U32 returns the underlying 32-bit interrupt number.
func (id IntID) U32() uint32 { return uint32(id) }

// IsSGI reports whether id is a software-generated interrupt.
func (id IntID) IsSGI() bool { return uint32(id) < sgiEnd }

// IsPPI reports whether id is a private peripheral interrupt.
func (id IntID) IsPPI() bool { return uint32(id) >= ppiStart && uint32(id) < ppiEnd }

// IsSPI reports whether id is a shared peripheral interrupt.
func (id IntID) IsSPI() bool { return uint32(id) >= spiStart && uint32(id) < spiEnd }

// IsEPPI reports whether id is an extended PPI.
func (id IntID) IsEPPI() bool { return uint32(id) >= eppiStart && uint32(id) < eppiEnd }

// IsESPI reports whether id is an extended SPI.
func (id IntID) IsESPI() bool { return uint32(id) >= espiStart && uint32(id) < espiEnd }

// IsLPI reports whether id is a locality-specific peripheral interrupt.
func (id IntID) IsLPI() bool { return uint32(id) >= lpiStart }

// IsSpecial reports whether id is one of the reserved INTIDs
// 1020..1023, including the spurious sentinel. Special IDs signal
// conditions to the acknowledge path and must never be dispatched to a
// handler or written to an EOI register.
func (id IntID) IsSpecial() bool {
	return uint32(id) >= specialStart && uint32(id) < specialEnd
}

// IsPrivate reports whether id is scoped to a single core (SGI, PPI or
// extended PPI). Private interrupts cannot be retargeted; everything
// else is global and routable.
func (id IntID) IsPrivate() bool {
	return id.IsSGI() || id.IsPPI() || id.IsEPPI()
}

// Valid reports whether id falls inside any defined INTID range,
// special IDs included.
func (id IntID) Valid() bool {
	v := uint32(id)
	switch {
	case v < spiEnd:
		return true
	case v >= specialStart && v < specialEnd:
		return true
	case id.IsEPPI() || id.IsESPI() || id.IsLPI():
		return true
	}
	return false
}

func (id IntID) String() string {
	v := uint32(id)
	switch {
	case id.IsSGI():
		return fmt.Sprintf("SGI %d", v)
	case id.IsPPI():
		return fmt.Sprintf("PPI %d", v-ppiStart)
	case id.IsSPI():
		return fmt.Sprintf("SPI %d", v-spiStart)
	case id == Spurious:
		return "spurious"
	case id.IsSpecial():
		return fmt.Sprintf("special %d", v)
	case id.IsEPPI():
		return fmt.Sprintf("EPPI %d", v-eppiStart)
	case id.IsESPI():
		return fmt.Sprintf("ESPI %d", v-espiStart)
	case id.IsLPI():
		return fmt.Sprintf("LPI %d", v-lpiStart)
	}
	return fmt.Sprintf("INTID %d (invalid)", v)
}
