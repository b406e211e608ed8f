package v3

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/gic/irq"
)

// Ack is the value returned by acknowledging an interrupt through
// ICC_IAR1_EL1. In v3 it is just the INTID; special INTIDs signal that
// nothing was pending.
type Ack uint32

// IntID returns the acknowledged interrupt.
func (a Ack) IntID() irq.IntID { return irq.Raw(uint32(a)) }

// IsSpurious reports whether the acknowledge found no pending
// interrupt of sufficient priority.
func (a Ack) IsSpurious() bool { return a.IntID().IsSpecial() }

func (a Ack) String() string {
	if a.IsSpurious() {
		return "spurious"
	}
	return a.IntID().String()
}

// CPUInterface is the system-register CPU interface of one core,
// paired with that core's redistributor. Values are only valid on the
// core they were initialized on.
type CPUInterface struct {
	sys    SysRegs
	redist *Redistributor
}

// InitCPUInterface brings up interrupt handling on the calling core:
// wakes its redistributor, resets private interrupt state, switches
// the CPU interface to the system register view, opens the priority
// mask and enables group 1 signalling. EOI starts in one-step mode.
func (g *Gic) InitCPUInterface() (*CPUInterface, error) {
	redist, err := g.Redistributor()
	if err != nil {
		return nil, err
	}
	if err := redist.Wake(); err != nil {
		return nil, err
	}
	if err := redist.InitPrivate(); err != nil {
		return nil, err
	}

	c := &CPUInterface{sys: g.sys, redist: redist}

	if c.sys.ReadSRE()&iccSreSRE == 0 {
		c.sys.WriteSRE(c.sys.ReadSRE() | iccSreSRE)
		if c.sys.ReadSRE()&iccSreSRE == 0 {
			return nil, fmt.Errorf("v3: system register interface would not enable")
		}
	}

	c.sys.WriteCtlr(c.sys.ReadCtlr() &^ iccCtlrEOIMode)
	c.sys.WritePMR(0xFF)
	c.sys.WriteBPR1(0)
	c.sys.WriteIGrpEn1(1)
	c.sys.ISB()

	slog.Debug("gicv3: cpu interface init", "core", redist.Affinity())
	return c, nil
}

// Redistributor returns this core's redistributor, for per-core
// interrupt configuration.
func (c *CPUInterface) Redistributor() *Redistributor { return c.redist }

// Acknowledge claims the highest-priority pending group 1 interrupt.
// Check Ack.IsSpurious before using the result.
func (c *CPUInterface) Acknowledge() Ack {
	return Ack(c.sys.ReadIAR1())
}

// EOI completes handling of an acknowledged interrupt. In one-step
// mode this drops the running priority and deactivates; in two-step
// mode it only drops priority and Deactivate must follow. Passing a
// spurious Ack is a caller bug and panics.
func (c *CPUInterface) EOI(a Ack) {
	if a.IsSpurious() {
		panic("v3: EOI of spurious interrupt")
	}
	c.sys.WriteEOIR1(uint64(a))
}

// Deactivate removes the active state of an interrupt after a
// two-step EOI. Calling it in one-step mode is a caller bug and
// panics, as is passing a spurious Ack.
func (c *CPUInterface) Deactivate(a Ack) {
	if a.IsSpurious() {
		panic("v3: deactivate of spurious interrupt")
	}
	if !c.EOIMode() {
		panic("v3: deactivate in one-step EOI mode")
	}
	c.sys.WriteDIR(uint64(a))
}

// SetEOIMode selects one-step (false) or two-step (true) interrupt
// completion.
func (c *CPUInterface) SetEOIMode(twoStep bool) {
	ctlr := c.sys.ReadCtlr()
	if twoStep {
		ctlr |= iccCtlrEOIMode
	} else {
		ctlr &^= iccCtlrEOIMode
	}
	c.sys.WriteCtlr(ctlr)
}

// EOIMode reports whether two-step completion is in effect.
func (c *CPUInterface) EOIMode() bool {
	return c.sys.ReadCtlr()&iccCtlrEOIMode != 0
}

// SetPriorityMask sets the threshold below which interrupts are not
// signalled to this core. 0xFF admits everything, 0 masks everything.
func (c *CPUInterface) SetPriorityMask(mask uint8) {
	c.sys.WritePMR(uint64(mask))
}

// RunningPriority returns the priority of the current active
// interrupt, or 0xFF when idle.
func (c *CPUInterface) RunningPriority() uint8 {
	return uint8(c.sys.ReadRPR())
}

// HighestPending returns the highest-priority pending group 1
// interrupt without acknowledging it.
func (c *CPUInterface) HighestPending() irq.IntID {
	return irq.Raw(uint32(c.sys.ReadHPPIR1()))
}

// SendSGI generates a software interrupt on the target cores. id must
// be an SGI; anything else panics.
func (c *CPUInterface) SendSGI(id irq.IntID, target SGITarget) {
	if !id.IsSGI() {
		panic(fmt.Sprintf("v3: %v is not a software-generated interrupt", id))
	}
	var word uint64
	if target.Others {
		word = sgirIRM
	} else {
		l := target.List
		word = uint64(l.bits)&sgirTargetListMask |
			uint64(l.aff1)<<sgirAff1Shift |
			uint64(l.aff2)<<sgirAff2Shift |
			uint64(l.aff3)<<sgirAff3Shift
	}
	word |= uint64(id.U32()) << sgirIntIDShift
	c.sys.WriteSGI1R(word)
	c.sys.ISB()
}
