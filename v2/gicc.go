package v2

import (
	"fmt"

	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
)

// Ack is a raw GICC_IAR value: the acknowledged interrupt ID plus, for
// SGIs, the identifier of the core that sent it.
type Ack uint32

// IntID returns the acknowledged interrupt.
func (a Ack) IntID() irq.IntID { return irq.Raw(uint32(a) & iarIntIDMask) }

// CPUID returns the sending CPU interface for an acknowledged SGI.
// Meaningless for other interrupt kinds.
func (a Ack) CPUID() uint32 { return (uint32(a) >> iarCPUShift) & iarCPUMask }

// IsSpurious reports whether the read observed no pending interrupt
// (or another special condition). A spurious Ack must not be passed to
// EOI or Deactivate.
func (a Ack) IsSpurious() bool { return a.IntID().IsSpecial() }

func (a Ack) String() string {
	if a.IsSpurious() {
		return a.IntID().String()
	}
	if a.IntID().IsSGI() {
		return fmt.Sprintf("%v from CPU %d", a.IntID(), a.CPUID())
	}
	return a.IntID().String()
}

// CPUInterface is one core's view of the GICv2 CPU interface block.
// The block is banked per core in hardware: each core must use the
// handle on itself only.
type CPUInterface struct {
	gicc mmio.Region
}

// Init brings this core's CPU interface to a known state: priority
// mask open, default preemption configuration, both groups enabled,
// one-step EOI mode. Run once per core, after distributor init.
func (c *CPUInterface) Init() error {
	c.gicc.Write32(giccCtlr, 0)

	// Admit all priorities.
	c.gicc.Write32(giccPmr, 0xFF)

	// Default binary points: no preemption surprises.
	c.gicc.Write32(giccBpr, 0x2)
	c.gicc.Write32(giccAbpr, 0x3)

	c.gicc.Write32(giccCtlr, giccCtlrEnableGrp0|giccCtlrEnableGrp1)
	return nil
}

// Acknowledge reads GICC_IAR, returning the highest-priority pending
// interrupt that clears the priority mask and marking it active. A
// spurious result means nothing was pending; check IsSpurious before
// dispatching.
func (c *CPUInterface) Acknowledge() Ack {
	return Ack(c.gicc.Read32(giccIar))
}

// EOI signals completion of the acknowledged interrupt: priority drop,
// plus deactivation unless two-step EOI mode is selected.
// Panics on a spurious Ack, which must never reach the EOI register.
func (c *CPUInterface) EOI(a Ack) {
	if a.IsSpurious() {
		panic("v2: EOI of spurious interrupt")
	}
	c.gicc.Write32(giccEoir, uint32(a))
}

// Deactivate clears the active state of the acknowledged interrupt.
// Only meaningful in two-step EOI mode, after EOI.
// Panics on a spurious Ack.
func (c *CPUInterface) Deactivate(a Ack) {
	if a.IsSpurious() {
		panic("v2: deactivate of spurious interrupt")
	}
	if !c.EOIMode() {
		panic("v2: deactivate in one-step EOI mode")
	}
	c.gicc.Write32(giccDir, uint32(a))
}

// SetEOIMode selects between one-step EOI (priority drop and
// deactivation together) and two-step (EOI drops priority, Deactivate
// retires the interrupt). Switch only during setup; changing the mode
// with interrupts in flight is architecturally undefined.
func (c *CPUInterface) SetEOIMode(twoStep bool) {
	ctlr := c.gicc.Read32(giccCtlr)
	if twoStep {
		ctlr |= giccCtlrEOIModeNS
	} else {
		ctlr &^= uint32(giccCtlrEOIModeNS)
	}
	c.gicc.Write32(giccCtlr, ctlr)
}

// EOIMode reports whether two-step EOI mode is selected.
func (c *CPUInterface) EOIMode() bool {
	return c.gicc.Read32(giccCtlr)&giccCtlrEOIModeNS != 0
}

// SetPriorityMask sets the minimum priority an interrupt needs to be
// acknowledged on this core. Pending interrupts with priority value
// >= mask are held back.
func (c *CPUInterface) SetPriorityMask(mask uint8) {
	c.gicc.Write32(giccPmr, uint32(mask))
}

// PriorityMask returns the current priority mask.
func (c *CPUInterface) PriorityMask() uint8 {
	return uint8(c.gicc.Read32(giccPmr))
}

// RunningPriority returns the priority of this core's current active
// interrupt, or 0xFF (idle priority) if none is active.
func (c *CPUInterface) RunningPriority() uint8 {
	return uint8(c.gicc.Read32(giccRpr))
}

// HighestPending returns the highest-priority pending interrupt for
// this core without acknowledging it.
func (c *CPUInterface) HighestPending() irq.IntID {
	return irq.Raw(c.gicc.Read32(giccHppir) & iarIntIDMask)
}
