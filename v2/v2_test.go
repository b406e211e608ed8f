package v2_test

import (
	"testing"

	"github.com/tinyrange/gic/gictest"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/v2"
)

func newTestGic(t *testing.T, opts gictest.V2Options) (*gictest.V2Machine, *v2.Gic) {
	t.Helper()
	m := gictest.NewV2(opts)
	g := v2.New(m.Dist(), m.CPU(0))
	if err := g.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, g
}

func TestInitResetsSharedInterrupts(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})

	if got := g.MaxSPINum(); got != 127 {
		t.Fatalf("MaxSPINum = %d, want 127", got)
	}
	if got := g.MaxCPUs(); got != 1 {
		t.Errorf("MaxCPUs = %d, want 1", got)
	}
	spi := irq.SPI(2)
	if g.IsEnabled(spi) {
		t.Errorf("%v enabled after init", spi)
	}
	if g.IsEnabled(irq.SGI(0)) {
		t.Errorf("SGI 0 enabled after init; reset must leave it to callers")
	}
	if got := g.Priority(spi); got != 0xA0 {
		t.Errorf("Priority(%v) = %#x, want 0xA0", spi, got)
	}
	if got := g.Trigger(spi); got != irq.Level {
		t.Errorf("Trigger(%v) = %v, want level", spi, got)
	}
	if got := g.Target(spi).CPUs(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Target(%v) = %v, want [0]", spi, got)
	}
	if !g.IsGroup1(spi) {
		t.Errorf("%v not in group 1 after init", spi)
	}
}

func TestEnableDisable(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})

	spi := irq.SPI(5)
	g.SetEnable(spi, true)
	if !g.IsEnabled(spi) {
		t.Fatalf("%v not enabled", spi)
	}
	g.SetEnable(spi, false)
	if g.IsEnabled(spi) {
		t.Fatalf("%v still enabled", spi)
	}
}

func TestDisableSkipsRedundantWrite(t *testing.T) {
	m, g := newTestGic(t, gictest.V2Options{})

	// SPI 5 is INTID 37, clear-enable word 1.
	const icenablerWord = 0x180 + 4
	spi := irq.SPI(5)

	g.SetEnable(spi, true)
	g.SetEnable(spi, false)
	writes := m.DistWrites(icenablerWord)
	if writes == 0 {
		t.Fatalf("disable did not write ICENABLER")
	}
	g.SetEnable(spi, false)
	if got := m.DistWrites(icenablerWord); got != writes {
		t.Errorf("redundant disable wrote ICENABLER: %d writes, want %d", got, writes)
	}
}

func TestTriggerConfigIsolated(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})

	a, b := irq.SPI(4), irq.SPI(5)
	g.SetTrigger(a, irq.Edge)
	if got := g.Trigger(a); got != irq.Edge {
		t.Errorf("Trigger(%v) = %v, want edge", a, got)
	}
	if got := g.Trigger(b); got != irq.Level {
		t.Errorf("Trigger(%v) = %v, want level; neighbour write leaked", b, got)
	}
}

func TestRetargetPrivatePanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})

	defer func() {
		if recover() == nil {
			t.Fatalf("SetTarget(PPI) did not panic")
		}
	}()
	g.SetTarget(irq.PPI(3), v2.NewTargetList(0))
}

func TestTargetListCPUs(t *testing.T) {
	tl := v2.NewTargetList(6, 0, 3)
	if got := tl.CPUs(); len(got) != 3 || got[0] != 0 || got[1] != 3 || got[2] != 6 {
		t.Fatalf("CPUs() = %v, want [0 3 6]", got)
	}
}

func TestSGIRoundTrip(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}

	g.SetEnable(irq.SGI(3), true)
	g.SendSGI(irq.SGI(3), v2.SGIToSelf())

	ack := cif.Acknowledge()
	if ack.IsSpurious() {
		t.Fatalf("Acknowledge spurious, want SGI 3")
	}
	if got := ack.IntID(); got != irq.SGI(3) {
		t.Fatalf("acknowledged %v, want SGI 3", got)
	}
	if got := ack.CPUID(); got != 0 {
		t.Errorf("source CPU = %d, want 0", got)
	}
	cif.EOI(ack)

	if next := cif.Acknowledge(); !next.IsSpurious() {
		t.Errorf("second acknowledge = %v, want spurious", next)
	}
}

func TestSendSGIRejectsNonSGI(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})

	defer func() {
		if recover() == nil {
			t.Fatalf("SendSGI(SPI) did not panic")
		}
	}()
	g.SendSGI(irq.SPI(1), v2.SGIToSelf())
}

func TestAckOrderFollowsPriority(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}

	low, high := irq.SPI(1), irq.SPI(2)
	g.SetEnable(low, true)
	g.SetEnable(high, true)
	g.SetPriority(low, 0xC0)
	g.SetPriority(high, 0x40)
	g.SetPending(low)
	g.SetPending(high)

	first := cif.Acknowledge()
	if got := first.IntID(); got != high {
		t.Fatalf("first acknowledge = %v, want %v", got, high)
	}
	if got := cif.RunningPriority(); got != 0x40 {
		t.Errorf("RunningPriority = %#x, want 0x40", got)
	}
	// The lower-priority interrupt must wait for the EOI.
	if a := cif.Acknowledge(); !a.IsSpurious() {
		t.Fatalf("acknowledge while running = %v, want spurious", a)
	}
	cif.EOI(first)

	second := cif.Acknowledge()
	if got := second.IntID(); got != low {
		t.Fatalf("second acknowledge = %v, want %v", got, low)
	}
	cif.EOI(second)
}

func TestPriorityMaskBlocksSignalling(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}

	spi := irq.SPI(7)
	g.SetEnable(spi, true)
	g.SetPending(spi)

	cif.SetPriorityMask(0x40) // default priority 0xA0 does not pass
	if a := cif.Acknowledge(); !a.IsSpurious() {
		t.Fatalf("acknowledge under mask = %v, want spurious", a)
	}
	cif.SetPriorityMask(0xFF)
	if a := cif.Acknowledge(); a.IntID() != spi {
		t.Fatalf("acknowledge = %v, want %v", a, spi)
	}
}

func TestTwoStepEOI(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}
	cif.SetEOIMode(true)
	if !cif.EOIMode() {
		t.Fatalf("EOIMode not set")
	}

	spi := irq.SPI(3)
	g.SetEnable(spi, true)
	g.SetPending(spi)

	ack := cif.Acknowledge()
	if ack.IntID() != spi {
		t.Fatalf("acknowledge = %v, want %v", ack, spi)
	}
	cif.EOI(ack)
	if !g.IsActive(spi) {
		t.Fatalf("%v inactive after priority drop; deactivated too early", spi)
	}
	cif.Deactivate(ack)
	if g.IsActive(spi) {
		t.Fatalf("%v still active after deactivate", spi)
	}
}

func TestEOISpuriousPanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}

	ack := cif.Acknowledge()
	if !ack.IsSpurious() {
		t.Fatalf("expected spurious acknowledge")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("EOI of spurious ack did not panic")
		}
	}()
	cif.EOI(ack)
}

func TestDeactivateInOneStepModePanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V2Options{})
	cif := g.CPUInterface()
	if err := cif.Init(); err != nil {
		t.Fatalf("CPUInterface.Init: %v", err)
	}

	spi := irq.SPI(3)
	g.SetEnable(spi, true)
	g.SetPending(spi)
	ack := cif.Acknowledge()

	defer func() {
		if recover() == nil {
			t.Fatalf("Deactivate in one-step mode did not panic")
		}
	}()
	cif.Deactivate(ack)
}
