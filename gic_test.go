package gic_test

import (
	"testing"

	"github.com/tinyrange/gic"
	"github.com/tinyrange/gic/gictest"
	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
	"github.com/tinyrange/gic/v2"
)

func TestDetect(t *testing.T) {
	v2m := gictest.NewV2(gictest.V2Options{})
	if got, err := gic.Detect(v2m.Dist()); err != nil || got != gic.Version2 {
		t.Errorf("Detect(v2) = %v, %v", got, err)
	}

	v3m := gictest.NewV3(gictest.V3Options{})
	if got, err := gic.Detect(v3m.Dist()); err != nil || got != gic.Version3 {
		t.Errorf("Detect(v3) = %v, %v", got, err)
	}

	if _, err := gic.Detect(mmio.NewMem(0x10000)); err == nil {
		t.Errorf("Detect(empty region) succeeded")
	}
}

func TestLifecycleOrdering(t *testing.T) {
	m := gictest.NewV3(gictest.V3Options{})
	c, err := gic.New(gic.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Version(); got != gic.Version3 {
		t.Fatalf("Version = %v, want %v", got, gic.Version3)
	}

	if _, err := c.InitCPU(); err == nil {
		t.Fatalf("InitCPU before Init succeeded")
	}
	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := c.Init(); err == nil {
		t.Fatalf("second Init succeeded")
	}
	if _, err := c.InitCPU(); err != nil {
		t.Fatalf("InitCPU: %v", err)
	}
}

func TestMissingFrames(t *testing.T) {
	v2m := gictest.NewV2(gictest.V2Options{})
	if _, err := gic.New(gic.Config{Dist: v2m.Dist()}); err == nil {
		t.Errorf("New(v2 without CPU frame) succeeded")
	}

	v3m := gictest.NewV3(gictest.V3Options{})
	if _, err := gic.New(gic.Config{Dist: v3m.Dist(), Sys: v3m.SysRegs(0)}); err == nil {
		t.Errorf("New(v3 without redistributor region) succeeded")
	}
}

func TestUniformLifecycleV2(t *testing.T) {
	m := gictest.NewV2(gictest.V2Options{})
	testUniformLifecycle(t, gic.Config{Dist: m.Dist(), CPU: m.CPU(0)}, func(c *gic.Controller) {
		c.V2().SetEnable(irq.SGI(1), true)
		c.V2().SendSGI(irq.SGI(1), v2.SGIToSelf())
	})
}

func TestUniformLifecycleV3(t *testing.T) {
	m := gictest.NewV3(gictest.V3Options{})
	testUniformLifecycle(t, gic.Config{Dist: m.Dist(), Redist: m.Redist(), Sys: m.SysRegs(0)}, func(c *gic.Controller) {
		spi := irq.SPI(1)
		c.V3().SetEnable(spi, true)
		c.V3().SetPending(spi)
	})
}

// testUniformLifecycle drives the version-neutral surface: raise an
// interrupt, acknowledge, complete, and see silence after.
func testUniformLifecycle(t *testing.T, cfg gic.Config, raise func(*gic.Controller)) {
	t.Helper()
	c, err := gic.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cpu, err := c.InitCPU()
	if err != nil {
		t.Fatalf("InitCPU: %v", err)
	}

	raise(c)

	ack := cpu.Acknowledge()
	if ack.IsSpurious() {
		t.Fatalf("Acknowledge spurious after raising an interrupt")
	}
	cpu.EOI(ack)
	if next := cpu.Acknowledge(); !next.IsSpurious() {
		t.Errorf("second acknowledge = %v, want spurious", next.IntID())
	}
}
