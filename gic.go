// Package gic drives ARM Generic Interrupt Controllers. It detects
// GICv2 and GICv3 hardware from their identification registers and
// offers a version-neutral surface over the version packages, which
// remain available for anything version-specific.
package gic

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tinyrange/gic/irq"
	"github.com/tinyrange/gic/mmio"
	"github.com/tinyrange/gic/v2"
	"github.com/tinyrange/gic/v3"
)

// Version is a GIC architecture revision.
type Version int

const (
	VersionUnknown Version = 0
	Version2       Version = 2
	Version3       Version = 3
)

func (v Version) String() string {
	switch v {
	case Version2:
		return "GICv2"
	case Version3:
		return "GICv3"
	default:
		return "unknown"
	}
}

// PIDR2 offsets differ between versions, so detection probes both.
const (
	v2PIDR2 = 0x0FE8
	v3PIDR2 = 0xFFE8
)

// Detect reads the architecture revision out of the distributor's
// peripheral identification registers.
func Detect(dist mmio.Region) (Version, error) {
	if rev := dist.Read32(v3PIDR2) >> 4 & 0xF; rev == 3 || rev == 4 {
		return Version3, nil
	}
	if rev := dist.Read32(v2PIDR2) >> 4 & 0xF; rev == 1 || rev == 2 {
		return Version2, nil
	}
	return VersionUnknown, fmt.Errorf("gic: no GICv2 or GICv3 identification found")
}

// Config collects the register frames for either GIC version. CPU and
// Redist are version-specific: v2 needs the memory-mapped CPU
// interface, v3 needs the redistributor region and system register
// access.
type Config struct {
	Dist mmio.Region

	// CPU is the GICC frame. v2 only.
	CPU mmio.Region

	// Redist is the redistributor region and RedistStride its frame
	// spacing (zero means the standard layout). v3 only.
	Redist       mmio.Region
	RedistStride uint32

	// Sys is the ICC system register file. v3 only; defaults to the
	// hardware registers.
	Sys v3.SysRegs
}

// Controller is a version-neutral handle on an initialized GIC.
type Controller struct {
	version Version
	v2      *v2.Gic
	v3      *v3.Gic

	mu          sync.Mutex
	initialized bool
}

// New detects the GIC version behind cfg.Dist and wraps it. Nothing is
// programmed until Init.
func New(cfg Config) (*Controller, error) {
	version, err := Detect(cfg.Dist)
	if err != nil {
		return nil, err
	}
	c := &Controller{version: version}
	switch version {
	case Version2:
		if cfg.CPU == nil {
			return nil, fmt.Errorf("gic: GICv2 needs the CPU interface frame")
		}
		c.v2 = v2.New(cfg.Dist, cfg.CPU)
	case Version3:
		if cfg.Redist == nil {
			return nil, fmt.Errorf("gic: GICv3 needs the redistributor region")
		}
		sys := cfg.Sys
		if sys == nil {
			sys = v3.HardwareSysRegs{}
		}
		c.v3 = v3.New(v3.Config{
			Dist:   cfg.Dist,
			Redist: cfg.Redist,
			Stride: cfg.RedistStride,
			Sys:    sys,
		})
	}
	return c, nil
}

// Version returns the detected architecture revision.
func (c *Controller) Version() Version { return c.version }

// V2 returns the version-specific driver, or nil on other hardware.
func (c *Controller) V2() *v2.Gic { return c.v2 }

// V3 returns the version-specific driver, or nil on other hardware.
func (c *Controller) V3() *v3.Gic { return c.v3 }

// Init resets and enables the distributor. It must run once, before
// any InitCPU.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return fmt.Errorf("gic: distributor already initialized")
	}

	var err error
	switch c.version {
	case Version2:
		err = c.v2.Init()
	case Version3:
		err = c.v3.Init()
	}
	if err != nil {
		return err
	}
	c.initialized = true
	slog.Debug("gic: controller init", "version", c.version)
	return nil
}

// CPU is the per-core handle: acknowledge, complete and send
// interrupts from the core it was initialized on.
type CPU struct {
	v2 *v2.CPUInterface
	v3 *v3.CPUInterface
}

// InitCPU brings up interrupt handling on the calling core. The
// distributor must be initialized first.
func (c *Controller) InitCPU() (*CPU, error) {
	c.mu.Lock()
	initialized := c.initialized
	c.mu.Unlock()
	if !initialized {
		return nil, fmt.Errorf("gic: distributor not initialized")
	}

	switch c.version {
	case Version2:
		cif := c.v2.CPUInterface()
		if err := cif.Init(); err != nil {
			return nil, err
		}
		return &CPU{v2: cif}, nil
	case Version3:
		cif, err := c.v3.InitCPUInterface()
		if err != nil {
			return nil, err
		}
		return &CPU{v3: cif}, nil
	}
	return nil, fmt.Errorf("gic: unsupported version %v", c.version)
}

// Ack identifies an acknowledged interrupt across versions.
type Ack struct {
	id       irq.IntID
	spurious bool
	v2       v2.Ack
	v3       v3.Ack
}

// IntID returns the acknowledged interrupt.
func (a Ack) IntID() irq.IntID { return a.id }

// IsSpurious reports whether nothing was pending.
func (a Ack) IsSpurious() bool { return a.spurious }

// Acknowledge claims the highest-priority pending interrupt.
func (p *CPU) Acknowledge() Ack {
	if p.v2 != nil {
		a := p.v2.Acknowledge()
		return Ack{id: a.IntID(), spurious: a.IsSpurious(), v2: a}
	}
	a := p.v3.Acknowledge()
	return Ack{id: a.IntID(), spurious: a.IsSpurious(), v3: a}
}

// EOI completes an acknowledged interrupt.
func (p *CPU) EOI(a Ack) {
	if p.v2 != nil {
		p.v2.EOI(a.v2)
		return
	}
	p.v3.EOI(a.v3)
}

// Deactivate finishes a two-step completion.
func (p *CPU) Deactivate(a Ack) {
	if p.v2 != nil {
		p.v2.Deactivate(a.v2)
		return
	}
	p.v3.Deactivate(a.v3)
}

// SetEOIMode selects one-step (false) or two-step (true) completion.
func (p *CPU) SetEOIMode(twoStep bool) {
	if p.v2 != nil {
		p.v2.SetEOIMode(twoStep)
		return
	}
	p.v3.SetEOIMode(twoStep)
}

// SetPriorityMask sets this core's signalling threshold.
func (p *CPU) SetPriorityMask(mask uint8) {
	if p.v2 != nil {
		p.v2.SetPriorityMask(mask)
		return
	}
	p.v3.SetPriorityMask(mask)
}
