package v3_test

import (
	"testing"

	"github.com/tinyrange/gic/gictest"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/v3"
)

func newTestGic(t *testing.T, opts gictest.V3Options) (*gictest.V3Machine, *v3.Gic) {
	t.Helper()
	m := gictest.NewV3(opts)
	g := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(0)})
	if err := g.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, g
}

func TestInitResetsSharedInterrupts(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})

	if got := g.MaxSPINum(); got != 127 {
		t.Fatalf("MaxSPINum = %d, want 127", got)
	}
	spi := irq.SPI(2)
	if g.IsEnabled(spi) {
		t.Errorf("%v enabled after init", spi)
	}
	if got := g.Priority(spi); got != 0xA0 {
		t.Errorf("Priority(%v) = %#x, want 0xA0", spi, got)
	}
	if got := g.Trigger(spi); got != irq.Level {
		t.Errorf("Trigger(%v) = %v, want level", spi, got)
	}
}

func TestSecurityDetection(t *testing.T) {
	cases := []struct {
		name string
		opts gictest.V3Options
		want v3.SecurityState
	}{
		{"disabled", gictest.V3Options{SecurityDisabled: true}, v3.SecuritySingle},
		{"secure", gictest.V3Options{Secure: true}, v3.SecuritySecure},
		{"non-secure", gictest.V3Options{}, v3.SecurityNonSecure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, g := newTestGic(t, tc.opts)
			if got := g.SecurityState(); got != tc.want {
				t.Fatalf("SecurityState = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInitFailsWhenWritesStuck(t *testing.T) {
	m := gictest.NewV3(gictest.V3Options{})
	m.SetStuckRWP(true)
	g := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(0)})
	if err := g.Init(); err == nil {
		t.Fatalf("Init succeeded with register writes stuck pending")
	}
}

func TestInitWithoutSysRegs(t *testing.T) {
	m := gictest.NewV3(gictest.V3Options{})
	g := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist()})
	if err := g.Init(); err != nil {
		t.Fatalf("Init with default system registers: %v", err)
	}
}

func TestWakeFailsWhenWritesStuck(t *testing.T) {
	m := gictest.NewV3(gictest.V3Options{})
	g := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(0)})
	m.SetStuckRWP(true)
	r, err := g.RedistributorFor(v3.MakeAffinity(0, 0, 0, 0))
	if err != nil {
		t.Fatalf("RedistributorFor: %v", err)
	}
	if err := r.Wake(); err == nil {
		t.Fatalf("Wake succeeded with register writes stuck pending")
	}
}

func TestCapabilities(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{MBIS: true, LPIS: true})
	if !g.HasMBIS() {
		t.Errorf("HasMBIS = false")
	}
	if !g.HasLPIs() {
		t.Errorf("HasLPIs = false")
	}
	if got := g.IDBits(); got != 10 {
		t.Errorf("IDBits = %d, want 10", got)
	}
	if got := g.MaxIntID(); got != 1024 {
		t.Errorf("MaxIntID = %d, want 1024", got)
	}
	if !g.HasSecurityExtn() {
		t.Errorf("HasSecurityExtn = false with two security states")
	}
}

func TestRetargetPrivatePanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})
	defer func() {
		if recover() == nil {
			t.Fatalf("SetTarget(PPI) did not panic")
		}
	}()
	g.SetTarget(irq.PPI(3), v3.MakeAffinity(0, 0, 0, 0))
}

func TestRedistributorDiscovery(t *testing.T) {
	cores := []v3.Affinity{
		v3.MakeAffinity(0, 0, 0, 0),
		v3.MakeAffinity(0, 0, 0, 1),
		v3.MakeAffinity(0, 0, 1, 0),
	}
	m, g := newTestGic(t, gictest.V3Options{Cores: cores})
	_ = m

	for _, aff := range cores {
		r, err := g.RedistributorFor(aff)
		if err != nil {
			t.Fatalf("RedistributorFor(%v): %v", aff, err)
		}
		if got := r.Affinity(); got != aff {
			t.Errorf("Affinity = %v, want %v", got, aff)
		}
	}
	if _, err := g.RedistributorFor(v3.MakeAffinity(1, 0, 0, 0)); err == nil {
		t.Fatalf("RedistributorFor(missing core) succeeded")
	}
}

func TestCPUInterfaceBringup(t *testing.T) {
	m, g := newTestGic(t, gictest.V3Options{})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
	}

	r := cif.Redistributor()
	if cif.EOIMode() {
		t.Errorf("EOIMode set after init, want one-step")
	}
	if r.IsEnabled(irq.SGI(0)) {
		t.Errorf("SGI 0 enabled after per-core init; reset must leave it to callers")
	}
	if r.IsEnabled(irq.PPI(2)) {
		t.Errorf("PPI 2 enabled after per-core init")
	}
	_ = m
}

func TestRedistributorDisableSkipsRedundantWrite(t *testing.T) {
	m, g := newTestGic(t, gictest.V3Options{})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
	}
	r := cif.Redistributor()

	const icenabler0 = 0x10180
	ppi := irq.PPI(4)
	r.SetEnable(ppi, true)
	r.SetEnable(ppi, false)
	writes := m.RedistWrites(icenabler0)
	if writes == 0 {
		t.Fatalf("disable did not write ICENABLER0")
	}
	r.SetEnable(ppi, false)
	if got := m.RedistWrites(icenabler0); got != writes {
		t.Errorf("redundant disable wrote ICENABLER0: %d writes, want %d", got, writes)
	}
}

func TestSGIToSelf(t *testing.T) {
	m, g := newTestGic(t, gictest.V3Options{})
	_ = m
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
	}

	cif.Redistributor().SetEnable(irq.SGI(5), true)
	self := v3.NewTargetList(v3.MakeAffinity(0, 0, 0, 0))
	cif.SendSGI(irq.SGI(5), v3.SGIToList(self))

	ack := cif.Acknowledge()
	if got := ack.IntID(); got != irq.SGI(5) {
		t.Fatalf("acknowledged %v, want SGI 5", got)
	}
	cif.EOI(ack)
	if next := cif.Acknowledge(); !next.IsSpurious() {
		t.Errorf("second acknowledge = %v, want spurious", next)
	}
}

func TestSGIToOthers(t *testing.T) {
	cores := []v3.Affinity{
		v3.MakeAffinity(0, 0, 0, 0),
		v3.MakeAffinity(0, 0, 0, 1),
	}
	m, g := newTestGic(t, gictest.V3Options{Cores: cores})
	cif0, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface core 0: %v", err)
	}

	g1 := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(1)})
	cif1, err := g1.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface core 1: %v", err)
	}

	cif1.Redistributor().SetEnable(irq.SGI(2), true)
	cif0.SendSGI(irq.SGI(2), v3.SGIToOthers())

	if a := cif0.Acknowledge(); !a.IsSpurious() {
		t.Errorf("sender acknowledged %v, want spurious", a)
	}
	a := cif1.Acknowledge()
	if got := a.IntID(); got != irq.SGI(2) {
		t.Fatalf("core 1 acknowledged %v, want SGI 2", got)
	}
	cif1.EOI(a)
}

func TestSPIRouting(t *testing.T) {
	cores := []v3.Affinity{
		v3.MakeAffinity(0, 0, 0, 0),
		v3.MakeAffinity(0, 0, 0, 1),
	}
	m, g := newTestGic(t, gictest.V3Options{Cores: cores})
	cif0, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface core 0: %v", err)
	}
	g1 := v3.New(v3.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(1)})
	cif1, err := g1.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface core 1: %v", err)
	}

	spi := irq.SPI(9)
	g.SetEnable(spi, true)
	g.SetTarget(spi, cores[1])
	if aff, any := g.Target(spi); any || aff != cores[1] {
		t.Fatalf("Target = %v any=%v, want %v", aff, any, cores[1])
	}
	g.SetPending(spi)

	if a := cif0.Acknowledge(); !a.IsSpurious() {
		t.Errorf("core 0 acknowledged %v, want spurious", a)
	}
	a := cif1.Acknowledge()
	if got := a.IntID(); got != spi {
		t.Fatalf("core 1 acknowledged %v, want %v", got, spi)
	}
	cif1.EOI(a)
}

func TestTwoStepEOI(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
	}
	cif.SetEOIMode(true)

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

func TestDeactivateInOneStepModePanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
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

func TestEOISpuriousPanics(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
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

func TestMessageSignalledSPIs(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{MBIS: true})
	cif, err := g.InitCPUInterface()
	if err != nil {
		t.Fatalf("InitCPUInterface: %v", err)
	}

	spi := irq.SPI(6)
	g.SetEnable(spi, true)
	if err := g.SignalSPI(spi); err != nil {
		t.Fatalf("SignalSPI: %v", err)
	}
	if !g.IsPending(spi) {
		t.Fatalf("%v not pending after SignalSPI", spi)
	}
	if err := g.ClearSPI(spi); err != nil {
		t.Fatalf("ClearSPI: %v", err)
	}
	if g.IsPending(spi) {
		t.Fatalf("%v still pending after ClearSPI", spi)
	}
	_ = cif
}

func TestMessageSignallingRequiresMBIS(t *testing.T) {
	_, g := newTestGic(t, gictest.V3Options{})
	if err := g.SignalSPI(irq.SPI(6)); err == nil {
		t.Fatalf("SignalSPI succeeded without MBIS")
	}
}

func TestTargetListSharedPrefix(t *testing.T) {
	list := v3.NewTargetList(
		v3.MakeAffinity(0, 1, 2, 3),
		v3.MakeAffinity(0, 1, 2, 5),
	)
	cores := list.Cores()
	if len(cores) != 2 || cores[0].Aff0() != 3 || cores[1].Aff0() != 5 {
		t.Fatalf("Cores() = %v", cores)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("mixed-prefix target list did not panic")
		}
	}()
	v3.NewTargetList(v3.MakeAffinity(0, 1, 2, 3), v3.MakeAffinity(0, 9, 2, 4))
}

func TestAffinityFromMPIDR(t *testing.T) {
	aff := v3.AffinityFromMPIDR(0x0000_0081_0000_0201)
	if got, want := aff, v3.MakeAffinity(0x81, 0, 2, 1); got != want {
		t.Fatalf("AffinityFromMPIDR = %v, want %v", got, want)
	}
}
