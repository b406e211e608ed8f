package v3

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/gic/internal/irqbits"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
)

// Redistributor is the per-core GICR frame pair: control and LPI state
// in the first 64KiB frame, SGI and PPI state in the second.
type Redistributor struct {
	frame    mmio.Region
	security SecurityState
}

// RedistributorFor walks the redistributor region looking for the
// frame whose GICR_TYPER affinity matches target. The walk stops at
// the frame marked Last; a miss means target is not a core this GIC
// serves.
func (g *Gic) RedistributorFor(target Affinity) (*Redistributor, error) {
	for off := uint32(0); ; off += g.stride {
		frame := mmio.Offset(g.redist, off)
		typer := frame.Read64(gicrTyper)
		aff := Affinity(typer >> gicrTyperAffinityShift)
		if aff == target {
			return &Redistributor{frame: frame, security: g.security}, nil
		}
		if typer&gicrTyperLast != 0 {
			return nil, fmt.Errorf("v3: no redistributor for core %v", target)
		}
	}
}

// Redistributor returns the redistributor of the calling core, located
// by MPIDR.
func (g *Gic) Redistributor() (*Redistributor, error) {
	return g.RedistributorFor(AffinityFromMPIDR(g.sys.ReadMPIDR()))
}

// Affinity returns the core this redistributor belongs to.
func (r *Redistributor) Affinity() Affinity {
	return Affinity(r.frame.Read64(gicrTyper) >> gicrTyperAffinityShift)
}

// ProcessorNumber returns the implementation-assigned core index from
// GICR_TYPER.
func (r *Redistributor) ProcessorNumber() uint32 {
	return uint32(r.frame.Read64(gicrTyper)>>gicrTyperProcNumShift) & gicrTyperProcNumMask
}

// Wake brings the attached core's interrupt signalling out of sleep:
// clear ProcessorSleep, wait for ChildrenAsleep to drop, then wait for
// the register write to settle before any private-interrupt
// configuration follows.
func (r *Redistributor) Wake() error {
	waker := r.frame.Read32(gicrWaker)
	if waker&gicrWakerChildrenAsleep == 0 {
		return r.waitRWP()
	}
	r.frame.Write32(gicrWaker, waker&^uint32(gicrWakerProcessorSleep))
	for i := 0; i < wakeSpinLimit; i++ {
		if r.frame.Read32(gicrWaker)&gicrWakerChildrenAsleep == 0 {
			return r.waitRWP()
		}
	}
	return fmt.Errorf("v3: redistributor %v did not wake", r.Affinity())
}

// InitPrivate resets the SGI and PPI state of this core: everything
// disabled and inactive, group assignment per the security state,
// default priorities, PPIs level-triggered. Nothing is re-enabled;
// callers opt interrupts back in, SGIs included.
func (r *Redistributor) InitPrivate() error {
	irqbits.SetAll(r.frame, gicrIcenabler0, 31, 1)
	irqbits.SetAll(r.frame, gicrIcpendr0, 31, 1)
	irqbits.SetAll(r.frame, gicrIcactiver0, 31, 1)
	if err := r.waitRWP(); err != nil {
		return err
	}

	switch r.security {
	case SecuritySecure:
		// SGIs group 0, PPIs group 1.
		r.frame.Write32(gicrIgroupr0, 0xFFFF0000)
	default:
		r.frame.Write32(gicrIgroupr0, 0xFFFFFFFF)
	}
	r.frame.Write32(gicrIgrpmodr0, 0)

	for i := uint32(0); i < 32; i++ {
		r.frame.Write8(gicrIpriorityr+i, defaultPriority)
	}
	// ICFGR0 covers SGIs and is read-only in effect; reset PPIs to
	// level in ICFGR1.
	r.frame.Write32(gicrIcfgr+4, 0)

	slog.Debug("gicv3: redistributor init", "core", r.Affinity())
	return nil
}

func (r *Redistributor) waitRWP() error {
	for i := 0; i < rwpSpinLimit; i++ {
		if r.frame.Read32(gicrCtlr)&gicrCtlrRWP == 0 {
			return nil
		}
	}
	return fmt.Errorf("v3: redistributor %v write pending did not clear", r.Affinity())
}

// checkPrivate panics unless id belongs in the redistributor SGI
// frame.
func checkPrivate(id irq.IntID) {
	if !id.IsSGI() && !id.IsPPI() {
		panic(fmt.Sprintf("v3: %v is not a private interrupt", id))
	}
}

// SetEnable enables or disables a private interrupt on this core.
// Disabling an interrupt that is already disabled does not touch the
// hardware.
func (r *Redistributor) SetEnable(id irq.IntID, enable bool) {
	checkPrivate(id)
	if enable {
		irqbits.Set(r.frame, gicrIsenabler0, id.U32())
		return
	}
	if !irqbits.Get(r.frame, gicrIsenabler0, id.U32()) {
		return
	}
	irqbits.Set(r.frame, gicrIcenabler0, id.U32())
}

// IsEnabled reports whether a private interrupt is enabled on this
// core.
func (r *Redistributor) IsEnabled(id irq.IntID) bool {
	checkPrivate(id)
	return irqbits.Get(r.frame, gicrIsenabler0, id.U32())
}

// SetTrigger sets a PPI's trigger mode. SGIs are always edge
// triggered; setting them is a no-op.
func (r *Redistributor) SetTrigger(id irq.IntID, t irq.Trigger) {
	checkPrivate(id)
	if id.IsSGI() {
		return
	}
	irqbits.SetTrigger(r.frame, gicrIcfgr, id.U32(), t == irq.Edge)
}

// Trigger returns a private interrupt's trigger mode.
func (r *Redistributor) Trigger(id irq.IntID) irq.Trigger {
	checkPrivate(id)
	if id.IsSGI() {
		return irq.Edge
	}
	if irqbits.TriggerIsEdge(r.frame, gicrIcfgr, id.U32()) {
		return irq.Edge
	}
	return irq.Level
}

// SetPriority sets a private interrupt's priority byte on this core.
func (r *Redistributor) SetPriority(id irq.IntID, prio uint8) {
	checkPrivate(id)
	r.frame.Write8(gicrIpriorityr+id.U32(), prio)
}

// Priority returns a private interrupt's priority byte.
func (r *Redistributor) Priority(id irq.IntID) uint8 {
	checkPrivate(id)
	return r.frame.Read8(gicrIpriorityr + id.U32())
}

// SetPending marks a private interrupt pending.
func (r *Redistributor) SetPending(id irq.IntID) {
	checkPrivate(id)
	irqbits.Set(r.frame, gicrIspendr0, id.U32())
}

// ClearPending removes a private interrupt's pending state.
func (r *Redistributor) ClearPending(id irq.IntID) {
	checkPrivate(id)
	irqbits.Set(r.frame, gicrIcpendr0, id.U32())
}

// IsPending reports whether a private interrupt is pending.
func (r *Redistributor) IsPending(id irq.IntID) bool {
	checkPrivate(id)
	return irqbits.Get(r.frame, gicrIspendr0, id.U32())
}

// SetActive forces a private interrupt into the active state.
func (r *Redistributor) SetActive(id irq.IntID) {
	checkPrivate(id)
	irqbits.Set(r.frame, gicrIsactiver0, id.U32())
}

// ClearActive forces a private interrupt out of the active state.
func (r *Redistributor) ClearActive(id irq.IntID) {
	checkPrivate(id)
	irqbits.Set(r.frame, gicrIcactiver0, id.U32())
}

// IsActive reports whether a private interrupt is active.
func (r *Redistributor) IsActive(id irq.IntID) bool {
	checkPrivate(id)
	return irqbits.Get(r.frame, gicrIsactiver0, id.U32())
}

// SetGroup1 assigns a private interrupt to group 1 or group 0 on this
// core.
func (r *Redistributor) SetGroup1(id irq.IntID, group1 bool) {
	checkPrivate(id)
	if group1 {
		irqbits.SetRMW(r.frame, gicrIgroupr0, id.U32())
	} else {
		irqbits.ClearRMW(r.frame, gicrIgroupr0, id.U32())
	}
}

// SetGroupModifier sets a private interrupt's group modifier bit on
// this core. Ignored by hardware when GICD_CTLR.DS is set.
func (r *Redistributor) SetGroupModifier(id irq.IntID, modifier bool) {
	checkPrivate(id)
	if modifier {
		irqbits.SetRMW(r.frame, gicrIgrpmodr0, id.U32())
	} else {
		irqbits.ClearRMW(r.frame, gicrIgrpmodr0, id.U32())
	}
}

// EnableLPIs turns on LPI support at this redistributor. The LPI
// tables must already be configured; this driver leaves table setup to
// the caller.
func (r *Redistributor) EnableLPIs() error {
	r.frame.Write32(gicrCtlr, r.frame.Read32(gicrCtlr)|gicrCtlrEnableLPIs)
	return r.waitRWP()
}
