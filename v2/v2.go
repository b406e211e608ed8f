// Package v2 drives the GICv2 distributor and memory-mapped CPU
// interface. GICv1 controllers are close enough to be handled by the
// same code.
package v2

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/gic/internal/irqbits"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
)

// Gic is a GICv2 driver over two register windows: the distributor
// block and the CPU interface block. It holds no interrupt state of
// its own; all state lives in the hardware registers.
//
// The distributor tables are shared across cores. Bit-granular writes
// to different interrupts are safe concurrently, but operations that
// read-modify-write the same word (group configuration, the disable
// fast path) must be serialized by the caller.
type Gic struct {
	gicd mmio.Region
	gicc mmio.Region
}

// New returns a driver over the given distributor and CPU interface
// register windows.
func New(dist, cpu mmio.Region) *Gic {
	return &Gic{gicd: dist, gicc: cpu}
}

// MaxSPINum returns the largest interrupt ID the distributor
// implements, derived from GICD_TYPER.ITLinesNumber.
func (g *Gic) MaxSPINum() uint32 {
	lines := g.gicd.Read32(gicdTyper) & gicdTyperITLinesMask
	return (lines+1)*32 - 1
}

// MaxCPUs returns the number of implemented CPU interfaces.
func (g *Gic) MaxCPUs() uint32 {
	return (g.gicd.Read32(gicdTyper)>>gicdTyperCPUShift)&gicdTyperCPUMask + 1
}

// DisableAll disables delivery of every interrupt.
func (g *Gic) DisableAll() {
	irqbits.SetAll(g.gicd, gicdIcenabler, g.MaxSPINum(), gicdBitmapWords)
}

// ClearAllPending removes the pending state of every interrupt.
func (g *Gic) ClearAllPending() {
	irqbits.SetAll(g.gicd, gicdIcpendr, g.MaxSPINum(), gicdBitmapWords)
}

// ClearAllActive removes the active state of every interrupt.
func (g *Gic) ClearAllActive() {
	irqbits.SetAll(g.gicd, gicdIcactiver, g.MaxSPINum(), gicdBitmapWords)
}

// Init resets the distributor to a known state and enables it for both
// interrupt groups. Call once, on one core, before any per-core init.
func (g *Gic) Init() error {
	// Disable the distributor while reconfiguring.
	ctlr := g.gicd.Read32(gicdCtlr)
	g.gicd.Write32(gicdCtlr, ctlr&^uint32(gicdCtlrEnableGrp0|gicdCtlrEnableGrp1))

	max := g.MaxSPINum()
	slog.Debug("gicv2: distributor init", "lines", max)

	g.DisableAll()
	g.ClearAllPending()
	g.ClearAllActive()

	// All interrupts to group 1 (non-secure) by default.
	irqbits.SetAll(g.gicd, gicdIgroupr, max, gicdBitmapWords)

	for i := uint32(0); i <= max; i++ {
		g.gicd.Write8(gicdIpriorityr+i, defaultPriority)
	}

	// Bind all SPIs to CPU interface 0 until told otherwise.
	for i := uint32(32); i <= max; i++ {
		g.gicd.Write8(gicdItargetsr+i, 0x01)
	}

	// Level-sensitive by default; SGI bits are read-only anyway.
	irqbits.ZeroAll(g.gicd, gicdIcfgr, max*2, gicdIcfgrWords)

	g.gicd.Write32(gicdCtlr, ctlr|gicdCtlrEnableGrp0|gicdCtlrEnableGrp1)
	return nil
}

// SetEnable enables or disables delivery of the interrupt. Disabling
// an already-disabled interrupt performs no register write.
func (g *Gic) SetEnable(id irq.IntID, enable bool) {
	if enable {
		irqbits.Set(g.gicd, gicdIsenabler, id.U32())
		return
	}
	if !irqbits.Get(g.gicd, gicdIsenabler, id.U32()) {
		return
	}
	irqbits.Set(g.gicd, gicdIcenabler, id.U32())
}

// IsEnabled reports whether the interrupt is enabled.
func (g *Gic) IsEnabled(id irq.IntID) bool {
	return irqbits.Get(g.gicd, gicdIsenabler, id.U32())
}

// SetPriority sets the interrupt's priority byte. 0 is the highest
// priority, 0xFF effectively masks the interrupt.
func (g *Gic) SetPriority(id irq.IntID, prio uint8) {
	g.gicd.Write8(gicdIpriorityr+id.U32(), prio)
}

// Priority returns the interrupt's priority byte.
func (g *Gic) Priority(id irq.IntID) uint8 {
	return g.gicd.Read8(gicdIpriorityr + id.U32())
}

// SetTrigger configures edge or level sensing for the interrupt. SGIs
// are architecturally edge-triggered, so the call is a no-op for them.
func (g *Gic) SetTrigger(id irq.IntID, t irq.Trigger) {
	if id.IsSGI() {
		return
	}
	irqbits.SetTrigger(g.gicd, gicdIcfgr, id.U32(), t == irq.Edge)
}

// Trigger returns the configured sensing mode of the interrupt.
func (g *Gic) Trigger(id irq.IntID) irq.Trigger {
	if irqbits.TriggerIsEdge(g.gicd, gicdIcfgr, id.U32()) {
		return irq.Edge
	}
	return irq.Level
}

// SetTarget routes an SPI to the CPU interfaces in the target list.
// Panics if id is private: SGIs and PPIs are bound to their own core
// and cannot be retargeted.
func (g *Gic) SetTarget(id irq.IntID, target TargetList) {
	if id.IsPrivate() {
		panic(fmt.Sprintf("v2: cannot retarget private interrupt %v", id))
	}
	g.gicd.Write8(gicdItargetsr+id.U32(), uint8(target))
}

// Target returns the CPU target mask of an SPI.
func (g *Gic) Target(id irq.IntID) TargetList {
	return TargetList(g.gicd.Read8(gicdItargetsr + id.U32()))
}

// SetGroup1 assigns the interrupt to group 1 (non-secure) or group 0.
func (g *Gic) SetGroup1(id irq.IntID, group1 bool) {
	if group1 {
		irqbits.SetRMW(g.gicd, gicdIgroupr, id.U32())
	} else {
		irqbits.ClearRMW(g.gicd, gicdIgroupr, id.U32())
	}
}

// IsGroup1 reports whether the interrupt is assigned to group 1.
func (g *Gic) IsGroup1(id irq.IntID) bool {
	return irqbits.Get(g.gicd, gicdIgroupr, id.U32())
}

// SetPending marks the interrupt pending in the distributor.
func (g *Gic) SetPending(id irq.IntID) {
	irqbits.Set(g.gicd, gicdIspendr, id.U32())
}

// ClearPending removes the interrupt's pending state.
func (g *Gic) ClearPending(id irq.IntID) {
	irqbits.Set(g.gicd, gicdIcpendr, id.U32())
}

// IsPending reports whether the interrupt is pending.
func (g *Gic) IsPending(id irq.IntID) bool {
	return irqbits.Get(g.gicd, gicdIspendr, id.U32())
}

// SetActive marks the interrupt active. Only useful for tests and
// state save/restore; normal activation happens via acknowledge.
func (g *Gic) SetActive(id irq.IntID) {
	irqbits.Set(g.gicd, gicdIsactiver, id.U32())
}

// ClearActive clears the interrupt's active state.
func (g *Gic) ClearActive(id irq.IntID) {
	irqbits.Set(g.gicd, gicdIcactiver, id.U32())
}

// IsActive reports whether the interrupt is active.
func (g *Gic) IsActive(id irq.IntID) bool {
	return irqbits.Get(g.gicd, gicdIsactiver, id.U32())
}

// SendSGI dispatches a software-generated interrupt through GICD_SGIR.
// Panics if id is not an SGI.
func (g *Gic) SendSGI(id irq.IntID, target SGITarget) {
	if !id.IsSGI() {
		panic(fmt.Sprintf("v2: %v is not an SGI", id))
	}
	word := id.U32()
	if target.Filter == FilterTargetList {
		word |= uint32(target.List) << sgirTargetListShift
	}
	word |= uint32(target.Filter) << sgirFilterShift
	g.gicd.Write32(gicdSgir, word)
}

// CPUInterface returns the handle for this core's CPU interface
// registers. Call Init on it once per core before unmasking interrupts
// at the processor.
func (g *Gic) CPUInterface() *CPUInterface {
	return &CPUInterface{gicc: g.gicc}
}
