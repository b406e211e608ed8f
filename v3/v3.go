// Package v3 drives a GICv3 interrupt controller: the memory-mapped
// distributor and redistributors plus the system-register CPU
// interface. Affinity routing is always enabled; the legacy
// memory-mapped CPU interface is not supported.
package v3

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/gic/internal/irqbits"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
)

// Config collects the hardware handles a Gic needs.
type Config struct {
	// Dist is the distributor register frame (GICD).
	Dist mmio.Region

	// Redist is the start of the redistributor region. Redistributors
	// for successive cores follow each other at Stride intervals.
	Redist mmio.Region

	// Stride is the distance between redistributor frames. Zero means
	// RedistStride, the plain GICv3 two-frame layout.
	Stride uint32

	// Sys is the ICC system register file of the calling core. Nil
	// means HardwareSysRegs, the real registers on arm64.
	Sys SysRegs
}

// Gic is a GICv3 interrupt controller.
type Gic struct {
	gicd     mmio.Region
	redist   mmio.Region
	stride   uint32
	sys      SysRegs
	security SecurityState
}

// New wraps the distributor and redistributor regions described by
// cfg. No hardware access happens until Init.
func New(cfg Config) *Gic {
	stride := cfg.Stride
	if stride == 0 {
		stride = RedistStride
	}
	sys := cfg.Sys
	if sys == nil {
		sys = HardwareSysRegs{}
	}
	return &Gic{gicd: cfg.Dist, redist: cfg.Redist, stride: stride, sys: sys}
}

// MaxSPINum returns the largest SPI INTID the distributor implements.
func (g *Gic) MaxSPINum() uint32 {
	return 32*(g.gicd.Read32(gicdTyper)&gicdTyperITLinesMask+1) - 1
}

// SecurityState returns the distributor security configuration
// detected during Init.
func (g *Gic) SecurityState() SecurityState { return g.security }

// HasLPIs reports whether the distributor supports locality-specific
// peripheral interrupts.
func (g *Gic) HasLPIs() bool { return g.gicd.Read32(gicdTyper)&gicdTyperLPIS != 0 }

// HasMBIS reports whether the distributor supports message-based
// signalling of SPIs via GICD_SETSPI_NSR.
func (g *Gic) HasMBIS() bool { return g.gicd.Read32(gicdTyper)&gicdTyperMBIS != 0 }

// HasSecurityExtn reports whether the distributor implements two
// security states.
func (g *Gic) HasSecurityExtn() bool {
	return g.gicd.Read32(gicdTyper)&gicdTyperSecurityExtn != 0
}

// MaxCPUs returns the CPU count from the legacy GICD_TYPER field.
// Only meaningful without affinity routing; with routing on, count
// redistributors instead.
func (g *Gic) MaxCPUs() uint32 {
	return (g.gicd.Read32(gicdTyper)>>gicdTyperCPUShift)&gicdTyperCPUMask + 1
}

// IDBits returns the number of INTID bits the controller implements.
func (g *Gic) IDBits() uint32 {
	return (g.gicd.Read32(gicdTyper)>>gicdTyperIDBitsShift)&gicdTyperIDBitsMask + 1
}

// MaxIntID returns one past the largest INTID the controller can
// represent, 2 to the power of IDBits.
func (g *Gic) MaxIntID() uint32 { return 1 << g.IDBits() }

// Init resets the distributor to a known state: everything disabled,
// nothing pending or active, all SPIs in group 1 at mid-scale priority
// and level-triggered, then enables group 1 forwarding with affinity
// routing on. Per-core state is untouched; see CPUInterface.Init.
func (g *Gic) Init() error {
	g.security = detectSecurity(g.gicd)

	// Quiesce the distributor before reprogramming it.
	g.gicd.Write32(gicdCtlr, 0)
	if err := g.waitRWP(); err != nil {
		return err
	}

	max := g.MaxSPINum()
	g.DisableAll()
	g.ClearAllPending()
	g.ClearAllActive()
	if err := g.waitRWP(); err != nil {
		return err
	}

	irqbits.SetAll(g.gicd, gicdIgroupr, max, gicdBitmapWords)
	irqbits.ZeroAll(g.gicd, gicdIgrpmodr, max, gicdBitmapWords)
	for i := uint32(32); i <= max; i++ {
		g.gicd.Write8(gicdIpriorityr+i, defaultPriority)
	}
	irqbits.ZeroAll(g.gicd, gicdIcfgr, max*2, gicdIcfgrWords)

	var ctlr uint32
	switch g.security {
	case SecuritySingle:
		ctlr = gicdCtlrOneEnableGrp1 | gicdCtlrOneARE
	case SecuritySecure:
		ctlr = gicdCtlrEnableGrp1NS | gicdCtlrAReNSSecure
	case SecurityNonSecure:
		ctlr = gicdCtlrEnableGrp1 | gicdCtlrEnableGrp1A | gicdCtlrAReNS
	}
	g.gicd.Write32(gicdCtlr, ctlr)
	g.sys.ISB()
	if err := g.waitRWP(); err != nil {
		return err
	}

	slog.Debug("gicv3: distributor init",
		"lines", max, "security", g.security, "lpis", g.HasLPIs(), "mbis", g.HasMBIS())
	return nil
}

// waitRWP spins until the distributor reports prior register writes
// complete. Bounded so broken hardware surfaces as an error instead of
// a hang.
func (g *Gic) waitRWP() error {
	for i := 0; i < rwpSpinLimit; i++ {
		if g.gicd.Read32(gicdCtlr)&gicdCtlrRWP == 0 {
			return nil
		}
	}
	return fmt.Errorf("v3: distributor write pending did not clear")
}

// checkShared panics unless id is a distributor-routed interrupt.
// Private interrupts live in the redistributor SGI frame; passing one
// here is a caller bug.
func checkShared(id irq.IntID) {
	if !id.IsSPI() {
		panic(fmt.Sprintf("v3: %v is not a shared peripheral interrupt", id))
	}
}

// SetEnable enables or disables forwarding of an SPI. Disabling an
// interrupt that is already disabled does not touch the hardware.
func (g *Gic) SetEnable(id irq.IntID, enable bool) {
	checkShared(id)
	if enable {
		irqbits.Set(g.gicd, gicdIsenabler, id.U32())
		return
	}
	if !irqbits.Get(g.gicd, gicdIsenabler, id.U32()) {
		return
	}
	irqbits.Set(g.gicd, gicdIcenabler, id.U32())
}

// IsEnabled reports whether an SPI is enabled.
func (g *Gic) IsEnabled(id irq.IntID) bool {
	checkShared(id)
	return irqbits.Get(g.gicd, gicdIsenabler, id.U32())
}

// SetTrigger sets an SPI's trigger mode.
func (g *Gic) SetTrigger(id irq.IntID, t irq.Trigger) {
	checkShared(id)
	irqbits.SetTrigger(g.gicd, gicdIcfgr, id.U32(), t == irq.Edge)
}

// Trigger returns an SPI's trigger mode.
func (g *Gic) Trigger(id irq.IntID) irq.Trigger {
	checkShared(id)
	if irqbits.TriggerIsEdge(g.gicd, gicdIcfgr, id.U32()) {
		return irq.Edge
	}
	return irq.Level
}

// SetPriority sets an SPI's priority byte. Lower is more urgent.
func (g *Gic) SetPriority(id irq.IntID, prio uint8) {
	checkShared(id)
	g.gicd.Write8(gicdIpriorityr+id.U32(), prio)
}

// Priority returns an SPI's priority byte.
func (g *Gic) Priority(id irq.IntID) uint8 {
	checkShared(id)
	return g.gicd.Read8(gicdIpriorityr + id.U32())
}

// SetTarget routes an SPI to a specific core.
func (g *Gic) SetTarget(id irq.IntID, target Affinity) {
	checkShared(id)
	g.gicd.Write64(gicdIrouter+8*id.U32(), target.router())
}

// SetTargetAny routes an SPI to any participating core; the
// distributor picks one.
func (g *Gic) SetTargetAny(id irq.IntID) {
	checkShared(id)
	g.gicd.Write64(gicdIrouter+8*id.U32(), irouterIRM)
}

// Target returns an SPI's routing target and whether it is routed to
// any core rather than a specific one.
func (g *Gic) Target(id irq.IntID) (Affinity, bool) {
	checkShared(id)
	r := g.gicd.Read64(gicdIrouter + 8*id.U32())
	if r&uint64(irouterIRM) != 0 {
		return 0, true
	}
	return MakeAffinity(uint8(r>>irouterAff3Shift), uint8(r>>irouterAff2Shift),
		uint8(r>>irouterAff1Shift), uint8(r)), false
}

// SetPending marks an SPI pending in software.
func (g *Gic) SetPending(id irq.IntID) {
	checkShared(id)
	irqbits.Set(g.gicd, gicdIspendr, id.U32())
}

// ClearPending removes an SPI's pending state.
func (g *Gic) ClearPending(id irq.IntID) {
	checkShared(id)
	irqbits.Set(g.gicd, gicdIcpendr, id.U32())
}

// IsPending reports whether an SPI is pending.
func (g *Gic) IsPending(id irq.IntID) bool {
	checkShared(id)
	return irqbits.Get(g.gicd, gicdIspendr, id.U32())
}

// SetActive forces an SPI into the active state.
func (g *Gic) SetActive(id irq.IntID) {
	checkShared(id)
	irqbits.Set(g.gicd, gicdIsactiver, id.U32())
}

// ClearActive forces an SPI out of the active state.
func (g *Gic) ClearActive(id irq.IntID) {
	checkShared(id)
	irqbits.Set(g.gicd, gicdIcactiver, id.U32())
}

// IsActive reports whether an SPI is active.
func (g *Gic) IsActive(id irq.IntID) bool {
	checkShared(id)
	return irqbits.Get(g.gicd, gicdIsactiver, id.U32())
}

// SetGroup1 assigns an SPI to group 1 (the usual group for
// non-secure or single-state interrupts) or group 0.
func (g *Gic) SetGroup1(id irq.IntID, group1 bool) {
	checkShared(id)
	if group1 {
		irqbits.SetRMW(g.gicd, gicdIgroupr, id.U32())
	} else {
		irqbits.ClearRMW(g.gicd, gicdIgroupr, id.U32())
	}
}

// SetGroupModifier sets an SPI's group modifier bit, selecting the
// secure subgroup when two security states are implemented. Ignored by
// hardware when GICD_CTLR.DS is set.
func (g *Gic) SetGroupModifier(id irq.IntID, modifier bool) {
	checkShared(id)
	if modifier {
		irqbits.SetRMW(g.gicd, gicdIgrpmodr, id.U32())
	} else {
		irqbits.ClearRMW(g.gicd, gicdIgrpmodr, id.U32())
	}
}

// DisableAll disables forwarding of every SPI.
func (g *Gic) DisableAll() {
	irqbits.SetAll(g.gicd, gicdIcenabler, g.MaxSPINum(), gicdBitmapWords)
}

// ClearAllPending removes the pending state of every SPI.
func (g *Gic) ClearAllPending() {
	irqbits.SetAll(g.gicd, gicdIcpendr, g.MaxSPINum(), gicdBitmapWords)
}

// ClearAllActive removes the active state of every SPI.
func (g *Gic) ClearAllActive() {
	irqbits.SetAll(g.gicd, gicdIcactiver, g.MaxSPINum(), gicdBitmapWords)
}

// SignalSPI raises an SPI by message; the write carries the INTID.
// Only valid when the distributor supports message-based interrupts.
func (g *Gic) SignalSPI(id irq.IntID) error {
	checkShared(id)
	if !g.HasMBIS() {
		return fmt.Errorf("v3: distributor has no message-based interrupt support")
	}
	g.gicd.Write32(gicdSetspiNSR, id.U32())
	return nil
}

// ClearSPI retracts a message-signalled SPI.
func (g *Gic) ClearSPI(id irq.IntID) error {
	checkShared(id)
	if !g.HasMBIS() {
		return fmt.Errorf("v3: distributor has no message-based interrupt support")
	}
	g.gicd.Write32(gicdClrspiNSR, id.U32())
	return nil
}
