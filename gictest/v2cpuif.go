package gictest

// V2CPUIf is the memory-mapped CPU interface frame of one core of a
// V2Machine.
type V2CPUIf struct {
	m   *V2Machine
	cpu int
}

func (f *V2CPUIf) c() *v2CPU { return &f.m.cpus[f.cpu] }

func (f *V2CPUIf) Read32(off uint32) uint32 {
	m := f.m
	m.mu.Lock()
	defer m.mu.Unlock()
	c := f.c()

	switch off {
	case cpuifCtlr:
		return c.ctlr
	case cpuifPmr:
		return c.pmr
	case cpuifBpr:
		return c.bpr
	case cpuifAbpr:
		return c.abpr
	case cpuifIar:
		return m.acknowledge(f.cpu)
	case cpuifRpr:
		return uint32(c.runningPrio())
	case cpuifHppir:
		intid, _, src := m.v2HighestPending(f.cpu)
		return intid | uint32(src)<<10
	case cpuifIidr:
		return 0x0202143B
	}
	return 0
}

func (f *V2CPUIf) Write32(off, value uint32) {
	m := f.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuWrites[f.cpu].note(off)
	c := f.c()

	switch off {
	case cpuifCtlr:
		c.ctlr = value
	case cpuifPmr:
		c.pmr = value
	case cpuifBpr:
		c.bpr = value
	case cpuifAbpr:
		c.abpr = value
	case cpuifEoir:
		m.endOfInterrupt(f.cpu, value)
	case cpuifDir:
		m.v2Deactivate(f.cpu, value&0x3FF)
	}
}

func (f *V2CPUIf) Read8(off uint32) uint8           { return uint8(f.Read32(off&^3) >> (8 * (off & 3))) }
func (f *V2CPUIf) Write8(off uint32, value uint8)   {}
func (f *V2CPUIf) Read64(off uint32) uint64         { return uint64(f.Read32(off)) }
func (f *V2CPUIf) Write64(off uint32, value uint64) { f.Write32(off, uint32(value)) }

func (c *v2CPU) runningPrio() uint8 {
	if len(c.acked) == 0 {
		return 0xFF
	}
	return c.acked[len(c.acked)-1].prio
}

// v2HighestPending finds the best candidate for a core without
// claiming it. Returns the INTID, its priority and, for SGIs, the
// source CPU. Caller holds m.mu.
func (m *V2Machine) v2HighestPending(cpu int) (uint32, uint8, uint8) {
	c := &m.cpus[cpu]
	best := uint32(spurious)
	bestPrio := uint8(0xFF)
	var bestSrc uint8
	consider := func(intid uint32, prio uint8, src uint8) {
		if uint32(prio) >= c.pmr || prio >= c.runningPrio() {
			return
		}
		if prio < bestPrio || (prio == bestPrio && intid < best) {
			best, bestPrio, bestSrc = intid, prio, src
		}
	}
	if m.ctlr&0x3 == 0 || c.ctlr&(cpuifCtlrEnableGrp0|cpuifCtlrEnableGrp1) == 0 {
		return spurious, 0xFF, 0
	}
	for i := uint32(0); i < 32; i++ {
		bit := uint32(1) << i
		if c.pending&bit == 0 || c.enabled&bit == 0 {
			continue
		}
		var src uint8
		if i < 16 {
			src = firstCPU(c.sgiSource[i])
		}
		consider(i, c.prio[i], src)
	}
	for i := uint32(32); i <= m.maxSPI; i++ {
		if !m.pending.get(i) || !m.enabled.get(i) {
			continue
		}
		if m.targets[i]&(1<<cpu) == 0 {
			continue
		}
		consider(i, m.prio[i], 0)
	}
	return best, bestPrio, bestSrc
}

func firstCPU(mask uint8) uint8 {
	for i := uint8(0); i < 8; i++ {
		if mask&(1<<i) != 0 {
			return i
		}
	}
	return 0
}

// acknowledge claims the best candidate: pending clears, active sets,
// and for SGIs the source CPU rides in bits [12:10] of the result.
func (m *V2Machine) acknowledge(cpu int) uint32 {
	intid, prio, src := m.v2HighestPending(cpu)
	if intid == spurious {
		return spurious
	}
	c := &m.cpus[cpu]
	if intid < 32 {
		c.pending &^= 1 << intid
		c.active |= 1 << intid
		if intid < 16 {
			c.sgiSource[intid] &^= 1 << src
		}
	} else {
		m.pending.clear(intid)
		m.active.set(intid)
	}
	c.acked = append(c.acked, ackedIRQ{intid: intid, prio: prio})
	return intid | uint32(src)<<10
}

func (m *V2Machine) endOfInterrupt(cpu int, value uint32) {
	c := &m.cpus[cpu]
	intid := value & 0x3FF
	if len(c.acked) == 0 || c.acked[len(c.acked)-1].intid != intid {
		return
	}
	c.acked = c.acked[:len(c.acked)-1]
	if c.ctlr&cpuifCtlrEOIModeNS == 0 {
		m.v2Deactivate(cpu, intid)
	}
}

func (m *V2Machine) v2Deactivate(cpu int, intid uint32) {
	if intid < 32 {
		m.cpus[cpu].active &^= 1 << intid
	} else if intid <= m.maxSPI {
		m.active.clear(intid)
	}
}
