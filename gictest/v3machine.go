package gictest

import (
	"sync"

	"gvisor.dev/gvisor/pkg/atomicbitops"

	"github.com/tinyrange/gic/v3"
)

// V3Options configures a modelled GICv3.
type V3Options struct {
	// Cores lists the affinities of the modelled cores,
	// redistributors in this order. Defaults to a single core 0.0.0.0.
	Cores []v3.Affinity

	// SecurityDisabled sets GICD_CTLR.DS: one security state.
	SecurityDisabled bool

	// Secure models the driver's accesses as Secure when two security
	// states exist. Decides whether GICD_NSACR writes stick.
	Secure bool

	// MaxSPI is the largest SPI INTID. Defaults to 127.
	MaxSPI uint32

	// MBIS and LPIS set the corresponding GICD_TYPER capability bits.
	MBIS bool
	LPIS bool
}

type ackedIRQ struct {
	intid uint32
	prio  uint8
}

type v3Core struct {
	aff   v3.Affinity
	waker atomicbitops.Uint32
	rctlr uint32

	// Private interrupt state, one word covers INTIDs 0..31.
	enabled uint32
	pending uint32
	active  uint32
	group1  uint32
	prio    [32]uint8
	cfg     [2]uint32

	// ICC system register state.
	sre    uint64
	pmr    uint64
	bpr1   uint64
	grpen0 uint64
	grpen1 uint64
	cctlr  uint64

	acked []ackedIRQ
}

// V3Machine is a software GICv3: distributor, one redistributor per
// core, and a system register file per core. Dist and Redist expose
// the memory-mapped frames; SysRegs exposes a core's ICC registers.
//
// The registers the driver spins on (GICD_CTLR for the RWP wait,
// GICR_WAKER for the wake handshake) are atomics served without the
// machine lock, so a polling goroutine cannot starve a concurrent
// state change.
type V3Machine struct {
	mu   sync.Mutex
	opts V3Options

	ctlr     atomicbitops.Uint32
	stuckRWP atomicbitops.Bool
	nsacr    uint32
	maxSPI   uint32

	// Shared interrupt state, INTIDs 32..maxSPI; bit 0 of word 1 is
	// INTID 32 so the words line up with register indices.
	enabled words
	pending words
	active  words
	group1  words
	grpmod  words
	prio    []uint8
	cfg     words
	router  []uint64

	cores []v3Core

	distWrites   writeCounter
	redistWrites writeCounter
}

// NewV3 builds a modelled GICv3.
func NewV3(opts V3Options) *V3Machine {
	if len(opts.Cores) == 0 {
		opts.Cores = []v3.Affinity{v3.MakeAffinity(0, 0, 0, 0)}
	}
	if opts.MaxSPI == 0 {
		opts.MaxSPI = 127
	}
	m := &V3Machine{
		opts:         opts,
		maxSPI:       opts.MaxSPI,
		enabled:      newWords(opts.MaxSPI + 1),
		pending:      newWords(opts.MaxSPI + 1),
		active:       newWords(opts.MaxSPI + 1),
		group1:       newWords(opts.MaxSPI + 1),
		grpmod:       newWords(opts.MaxSPI + 1),
		prio:         make([]uint8, opts.MaxSPI+1),
		cfg:          newWords((opts.MaxSPI + 1) * 2),
		router:       make([]uint64, opts.MaxSPI+1),
		distWrites:   writeCounter{},
		redistWrites: writeCounter{},
	}
	for _, aff := range opts.Cores {
		c := v3Core{aff: aff, pmr: 0}
		c.waker = atomicbitops.FromUint32(redistWakerSleep | redistWakerChildren)
		m.cores = append(m.cores, c)
	}
	return m
}

// SetStuckRWP makes the register-write-pending bits of GICD_CTLR and
// GICR_CTLR read as stuck, for testing the bounded waits.
func (m *V3Machine) SetStuckRWP(stuck bool) {
	m.stuckRWP.Store(stuck)
}

// DistWrites returns how many writes hit a distributor offset.
func (m *V3Machine) DistWrites(off uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distWrites[off]
}

// RedistWrites returns how many writes hit a redistributor offset
// (relative to the start of the redistributor region).
func (m *V3Machine) RedistWrites(off uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redistWrites[off]
}

// Dist returns the distributor register frame.
func (m *V3Machine) Dist() *V3Dist { return &V3Dist{m} }

// Redist returns the redistributor region, all cores' frames at
// 128KiB stride.
func (m *V3Machine) Redist() *V3Redist { return &V3Redist{m} }

// SysRegs returns the ICC register file of core i.
func (m *V3Machine) SysRegs(i int) *V3SysRegs { return &V3SysRegs{m: m, core: i} }

func (m *V3Machine) typer() uint32 {
	itLines := (m.maxSPI+1)/32 - 1
	v := itLines | uint32(9)<<19 // 10 INTID bits
	if !m.opts.SecurityDisabled {
		v |= 1 << 10
	}
	if m.opts.MBIS {
		v |= 1 << 16
	}
	if m.opts.LPIS {
		v |= 1 << 17
	}
	return v
}

// V3Dist is the distributor frame of a V3Machine.
type V3Dist struct{ m *V3Machine }

func (d *V3Dist) Read32(off uint32) uint32 {
	m := d.m

	// CTLR is the driver's RWP spin target; serve it without the
	// machine lock.
	if off == distCtlr {
		v := m.ctlr.Load()
		if m.opts.SecurityDisabled {
			v |= distCtlrDS
		}
		if m.stuckRWP.Load() {
			v |= distCtlrRWP
		}
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case off == distTyper:
		return m.typer()
	case off == distNsacr:
		return m.nsacr
	case off == distPidr2V3:
		return archRevGICv3
	case off >= distIgroupr && off < distIgroupr+0x80:
		return m.group1.index((off - distIgroupr) / 4)
	case off >= distIsenabler && off < distIsenabler+0x80:
		return m.enabled.index((off - distIsenabler) / 4)
	case off >= distIcenabler && off < distIcenabler+0x80:
		return m.enabled.index((off - distIcenabler) / 4)
	case off >= distIspendr && off < distIspendr+0x80:
		return m.pending.index((off - distIspendr) / 4)
	case off >= distIcpendr && off < distIcpendr+0x80:
		return m.pending.index((off - distIcpendr) / 4)
	case off >= distIsactiver && off < distIsactiver+0x80:
		return m.active.index((off - distIsactiver) / 4)
	case off >= distIcactiver && off < distIcactiver+0x80:
		return m.active.index((off - distIcactiver) / 4)
	case off >= distIcfgr && off < distIcfgr+0x100:
		return m.cfg.index((off - distIcfgr) / 4)
	case off >= distIgrpmodr && off < distIgrpmodr+0x80:
		return m.grpmod.index((off - distIgrpmodr) / 4)
	}
	return 0
}

func (d *V3Dist) Write32(off, value uint32) {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distWrites.note(off)

	switch {
	case off == distCtlr:
		m.ctlr.Store(value &^ uint32(distCtlrDS|distCtlrRWP))
	case off == distNsacr:
		if m.opts.Secure && !m.opts.SecurityDisabled {
			m.nsacr = value
		}
	case off == distSetspiNSR:
		if m.opts.MBIS && value >= 32 && value <= m.maxSPI {
			m.pending.set(value)
		}
	case off == distClrspiNSR:
		if m.opts.MBIS && value >= 32 && value <= m.maxSPI {
			m.pending.clear(value)
		}
	case off >= distIgroupr && off < distIgroupr+0x80:
		m.group1.store((off-distIgroupr)/4, value)
	case off >= distIsenabler && off < distIsenabler+0x80:
		m.enabled.w1s((off-distIsenabler)/4, value)
	case off >= distIcenabler && off < distIcenabler+0x80:
		m.enabled.w1c((off-distIcenabler)/4, value)
	case off >= distIspendr && off < distIspendr+0x80:
		m.pending.w1s((off-distIspendr)/4, value)
	case off >= distIcpendr && off < distIcpendr+0x80:
		m.pending.w1c((off-distIcpendr)/4, value)
	case off >= distIsactiver && off < distIsactiver+0x80:
		m.active.w1s((off-distIsactiver)/4, value)
	case off >= distIcactiver && off < distIcactiver+0x80:
		m.active.w1c((off-distIcactiver)/4, value)
	case off >= distIcfgr && off < distIcfgr+0x100:
		m.cfg.store((off-distIcfgr)/4, value)
	case off >= distIgrpmodr && off < distIgrpmodr+0x80:
		m.grpmod.store((off-distIgrpmodr)/4, value)
	}
}

func (d *V3Dist) Read8(off uint32) uint8 {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= distIpriorityr && off < distIpriorityr+0x400 {
		idx := off - distIpriorityr
		if idx <= m.maxSPI {
			return m.prio[idx]
		}
	}
	return 0
}

func (d *V3Dist) Write8(off uint32, value uint8) {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distWrites.note(off)
	if off >= distIpriorityr && off < distIpriorityr+0x400 {
		idx := off - distIpriorityr
		if idx <= m.maxSPI {
			m.prio[idx] = value
		}
	}
}

func (d *V3Dist) Read64(off uint32) uint64 {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= distIrouter && off < distIrouter+8*(m.maxSPI+1) {
		return m.router[(off-distIrouter)/8]
	}
	return 0
}

func (d *V3Dist) Write64(off uint32, value uint64) {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distWrites.note(off)
	if off >= distIrouter && off < distIrouter+8*(m.maxSPI+1) {
		m.router[(off-distIrouter)/8] = value
	}
}

// V3Redist is the redistributor region of a V3Machine.
type V3Redist struct{ m *V3Machine }

func (r *V3Redist) core(off uint32) (*v3Core, uint32) {
	idx := int(off / redistStride)
	if idx >= len(r.m.cores) {
		return nil, 0
	}
	return &r.m.cores[idx], off % redistStride
}

func (r *V3Redist) Read32(off uint32) uint32 {
	m := r.m
	c, rel := r.core(off)
	if c == nil {
		return 0
	}

	// WAKER is the spin target of the wake handshake; serve it without
	// the machine lock.
	if rel == redistWaker {
		return c.waker.Load()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch rel {
	case redistCtlr:
		v := c.rctlr
		if m.stuckRWP.Load() {
			v |= redistCtlrRWP
		}
		return v
	case redistIgroupr0:
		return c.group1
	case redistIsenabler0, redistIcenabler0:
		return c.enabled
	case redistIspendr0, redistIcpendr0:
		return c.pending
	case redistIsactiver0, redistIcactiver0:
		return c.active
	case redistIcfgr:
		return c.cfg[0]
	case redistIcfgr + 4:
		return c.cfg[1]
	}
	return 0
}

func (r *V3Redist) Write32(off, value uint32) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redistWrites.note(off)
	c, rel := r.core(off)
	if c == nil {
		return
	}

	switch rel {
	case redistCtlr:
		c.rctlr = value &^ uint32(redistCtlrRWP)
	case redistWaker:
		// Clearing ProcessorSleep wakes the core; the children flag
		// follows immediately in this model.
		if value&redistWakerSleep == 0 {
			c.waker.Store(value &^ uint32(redistWakerChildren))
		} else {
			c.waker.Store(value | redistWakerChildren)
		}
	case redistIgroupr0:
		c.group1 = value
	case redistIgrpmodr0:
		// Group modifier tracked but not modelled further.
	case redistIsenabler0:
		c.enabled |= value
	case redistIcenabler0:
		c.enabled &^= value
	case redistIspendr0:
		c.pending |= value
	case redistIcpendr0:
		c.pending &^= value
	case redistIsactiver0:
		c.active |= value
	case redistIcactiver0:
		c.active &^= value
	case redistIcfgr:
		// SGI trigger configuration is fixed.
	case redistIcfgr + 4:
		c.cfg[1] = value
	}
}

func (r *V3Redist) Read8(off uint32) uint8 {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	c, rel := r.core(off)
	if c == nil {
		return 0
	}
	if rel >= redistIpriorityr && rel < redistIpriorityr+32 {
		return c.prio[rel-redistIpriorityr]
	}
	return 0
}

func (r *V3Redist) Write8(off uint32, value uint8) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redistWrites.note(off)
	c, rel := r.core(off)
	if c == nil {
		return
	}
	if rel >= redistIpriorityr && rel < redistIpriorityr+32 {
		c.prio[rel-redistIpriorityr] = value
	}
}

func (r *V3Redist) Read64(off uint32) uint64 {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := int(off / redistStride)
	if idx >= len(r.m.cores) {
		return 0
	}
	c := &m.cores[idx]
	if off%redistStride == redistTyper {
		v := uint64(c.aff)<<32 | uint64(idx)<<8
		if idx == len(m.cores)-1 {
			v |= redistTyperLast
		}
		return v
	}
	return 0
}

func (r *V3Redist) Write64(off uint32, value uint64) {
	r.m.mu.Lock()
	r.m.redistWrites.note(off)
	r.m.mu.Unlock()
}
