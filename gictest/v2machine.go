package gictest

import "sync"

// V2Options configures a modelled GICv2.
type V2Options struct {
	// CPUs is the core count, up to 8. Defaults to 1.
	CPUs int

	// MaxSPI is the largest SPI INTID. Defaults to 127.
	MaxSPI uint32
}

type v2CPU struct {
	ctlr uint32
	pmr  uint32
	bpr  uint32
	abpr uint32

	// Private interrupt state, INTIDs 0..31.
	enabled uint32
	pending uint32
	active  uint32
	prio    [32]uint8

	// Pending SGIs carry the source CPU; per-SGI source bitmap the
	// way GICD_SPENDSGIR tracks it.
	sgiSource [16]uint8

	acked []ackedIRQ
}

// V2Machine is a software GICv2: distributor plus one memory-mapped
// CPU interface per core.
type V2Machine struct {
	mu   sync.Mutex
	opts V2Options

	ctlr   uint32
	maxSPI uint32

	enabled words
	pending words
	active  words
	group1  words
	prio    []uint8
	targets []uint8
	cfg     words

	cpus []v2CPU

	distWrites writeCounter
	cpuWrites  []writeCounter
}

// NewV2 builds a modelled GICv2.
func NewV2(opts V2Options) *V2Machine {
	if opts.CPUs == 0 {
		opts.CPUs = 1
	}
	if opts.CPUs > 8 {
		panic("gictest: GICv2 supports at most 8 CPUs")
	}
	if opts.MaxSPI == 0 {
		opts.MaxSPI = 127
	}
	m := &V2Machine{
		opts:       opts,
		maxSPI:     opts.MaxSPI,
		enabled:    newWords(opts.MaxSPI + 1),
		pending:    newWords(opts.MaxSPI + 1),
		active:     newWords(opts.MaxSPI + 1),
		group1:     newWords(opts.MaxSPI + 1),
		prio:       make([]uint8, opts.MaxSPI+1),
		targets:    make([]uint8, opts.MaxSPI+1),
		cfg:        newWords((opts.MaxSPI + 1) * 2),
		cpus:       make([]v2CPU, opts.CPUs),
		distWrites: writeCounter{},
	}
	for range m.cpus {
		m.cpuWrites = append(m.cpuWrites, writeCounter{})
	}
	return m
}

// DistWrites returns how many writes hit a distributor offset.
func (m *V2Machine) DistWrites(off uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distWrites[off]
}

// Dist returns the distributor register frame.
func (m *V2Machine) Dist() *V2Dist { return &V2Dist{m} }

// CPU returns the memory-mapped CPU interface frame of core i.
func (m *V2Machine) CPU(i int) *V2CPUIf { return &V2CPUIf{m: m, cpu: i} }

// V2Dist is the distributor frame of a V2Machine.
type V2Dist struct{ m *V2Machine }

func (d *V2Dist) Read32(off uint32) uint32 {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case off == distCtlr:
		return m.ctlr
	case off == distTyper:
		itLines := (m.maxSPI+1)/32 - 1
		return itLines | uint32(len(m.cpus)-1)<<5
	case off == distPidr2V2:
		return archRevGICv2
	case off >= distIgroupr && off < distIgroupr+0x80:
		return m.group1.index((off - distIgroupr) / 4)
	case off >= distIsenabler && off < distIsenabler+0x80:
		idx := (off - distIsenabler) / 4
		if idx == 0 {
			return m.cpuEnabled0()
		}
		return m.enabled.index(idx)
	case off >= distIcenabler && off < distIcenabler+0x80:
		idx := (off - distIcenabler) / 4
		if idx == 0 {
			return m.cpuEnabled0()
		}
		return m.enabled.index(idx)
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
	}
	return 0
}

// cpuEnabled0 returns the banked word 0 view: v2 banks the private
// interrupt registers per CPU, but this model exposes CPU 0's bank
// through the distributor frame.
func (m *V2Machine) cpuEnabled0() uint32 {
	return m.cpus[0].enabled
}

func (d *V2Dist) Write32(off, value uint32) {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distWrites.note(off)

	switch {
	case off == distCtlr:
		m.ctlr = value
	case off == distSgir:
		m.sendSGI(value)
	case off >= distIgroupr && off < distIgroupr+0x80:
		m.group1.store((off-distIgroupr)/4, value)
	case off >= distIsenabler && off < distIsenabler+0x80:
		idx := (off - distIsenabler) / 4
		if idx == 0 {
			m.cpus[0].enabled |= value
		} else {
			m.enabled.w1s(idx, value)
		}
	case off >= distIcenabler && off < distIcenabler+0x80:
		idx := (off - distIcenabler) / 4
		if idx == 0 {
			m.cpus[0].enabled &^= value
		} else {
			m.enabled.w1c(idx, value)
		}
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
	}
}

func (d *V2Dist) Read8(off uint32) uint8 {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case off >= distIpriorityr && off < distIpriorityr+0x400:
		idx := off - distIpriorityr
		if idx <= m.maxSPI {
			return m.prio[idx]
		}
	case off >= distItargetsr && off < distItargetsr+0x400:
		idx := off - distItargetsr
		if idx < 32 {
			// Banked: private interrupts target only the reading CPU.
			return 0x01
		}
		if idx <= m.maxSPI {
			return m.targets[idx]
		}
	}
	return 0
}

func (d *V2Dist) Write8(off uint32, value uint8) {
	m := d.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distWrites.note(off)
	switch {
	case off >= distIpriorityr && off < distIpriorityr+0x400:
		idx := off - distIpriorityr
		if idx < 32 {
			m.cpus[0].prio[idx] = value
		} else if idx <= m.maxSPI {
			m.prio[idx] = value
		}
	case off >= distItargetsr && off < distItargetsr+0x400:
		idx := off - distItargetsr
		if idx >= 32 && idx <= m.maxSPI {
			m.targets[idx] = value
		}
	}
}

func (d *V2Dist) Read64(off uint32) uint64         { return uint64(d.Read32(off)) }
func (d *V2Dist) Write64(off uint32, value uint64) { d.Write32(off, uint32(value)) }

// sendSGI dispatches a GICD_SGIR write. The source is modelled as
// CPU 0; v2 has no architectural way for software to name the sender.
func (m *V2Machine) sendSGI(value uint32) {
	sgi := value & 0xF
	list := uint8(value >> 16)
	filter := (value >> 24) & 0x3

	var targets uint8
	switch filter {
	case 0:
		targets = list
	case 1:
		targets = 0xFF &^ (1 << 0)
	case 2:
		targets = 1 << 0
	}
	for i := range m.cpus {
		if targets&(1<<i) == 0 {
			continue
		}
		m.cpus[i].pending |= 1 << sgi
		m.cpus[i].sgiSource[sgi] |= 1 << 0
	}
}

// RaisePPI marks a PPI pending on a core, standing in for a private
// peripheral asserting its line.
func (m *V2Machine) RaisePPI(cpu int, intid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpus[cpu].pending |= 1 << intid
}
