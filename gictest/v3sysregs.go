package gictest

// V3SysRegs models the ICC system register file of one core of a
// V3Machine. Acknowledge walks the machine's pending state the way the
// hardware prioritizer would.
type V3SysRegs struct {
	m    *V3Machine
	core int
}

func (s *V3SysRegs) c() *v3Core { return &s.m.cores[s.core] }

func (s *V3SysRegs) ReadMPIDR() uint64 {
	aff := s.c().aff
	return uint64(aff.Aff3())<<32 | uint64(aff.Aff2())<<16 |
		uint64(aff.Aff1())<<8 | uint64(aff.Aff0())
}

func (s *V3SysRegs) ReadSRE() uint64   { return s.c().sre }
func (s *V3SysRegs) WriteSRE(v uint64) { s.c().sre = v }

func (s *V3SysRegs) WritePMR(v uint64)  { s.c().pmr = v }
func (s *V3SysRegs) WriteBPR1(v uint64) { s.c().bpr1 = v }

func (s *V3SysRegs) WriteIGrpEn0(v uint64) { s.c().grpen0 = v }
func (s *V3SysRegs) WriteIGrpEn1(v uint64) { s.c().grpen1 = v }
func (s *V3SysRegs) ReadIGrpEn1() uint64   { return s.c().grpen1 }

func (s *V3SysRegs) ReadCtlr() uint64   { return s.c().cctlr }
func (s *V3SysRegs) WriteCtlr(v uint64) { s.c().cctlr = v }

func (s *V3SysRegs) ISB() {}

const v3EOIModeBit = 1 << 1

func (c *v3Core) runningPrio() uint8 {
	if len(c.acked) == 0 {
		return 0xFF
	}
	return c.acked[len(c.acked)-1].prio
}

// highestPending finds the best group 1 candidate for this core
// without claiming it. Caller holds m.mu.
func (m *V3Machine) highestPending(core int) (uint32, uint8) {
	c := &m.cores[core]
	best := uint32(spurious)
	bestPrio := uint8(0xFF)
	consider := func(intid uint32, prio uint8) {
		if uint64(prio) >= c.pmr || prio >= c.runningPrio() {
			return
		}
		if prio < bestPrio || (prio == bestPrio && intid < best) {
			best, bestPrio = intid, prio
		}
	}
	if c.grpen1&1 == 0 || m.ctlr.Load()&0x3 == 0 {
		return spurious, 0xFF
	}
	for i := uint32(0); i < 32; i++ {
		bit := uint32(1) << i
		if c.pending&bit != 0 && c.enabled&bit != 0 && c.group1&bit != 0 {
			consider(i, c.prio[i])
		}
	}
	for i := uint32(32); i <= m.maxSPI; i++ {
		if !m.pending.get(i) || !m.enabled.get(i) || !m.group1.get(i) {
			continue
		}
		r := m.router[i]
		if r&(1<<31) == 0 && v3RouterAff(r) != uint32(c.aff) {
			continue
		}
		consider(i, m.prio[i])
	}
	return best, bestPrio
}

func v3RouterAff(r uint64) uint32 {
	return uint32(r>>32)<<24&0xFF000000 | uint32(r)&0xFFFFFF
}

func (s *V3SysRegs) ReadIAR1() uint64 {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	intid, prio := m.highestPending(s.core)
	if intid == spurious {
		return spurious
	}
	c := s.c()
	if intid < 32 {
		c.pending &^= 1 << intid
		c.active |= 1 << intid
	} else {
		m.pending.clear(intid)
		m.active.set(intid)
	}
	c.acked = append(c.acked, ackedIRQ{intid: intid, prio: prio})
	return uint64(intid)
}

func (s *V3SysRegs) ReadHPPIR1() uint64 {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	intid, _ := m.highestPending(s.core)
	return uint64(intid)
}

func (s *V3SysRegs) WriteEOIR1(v uint64) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	c := s.c()
	if len(c.acked) == 0 {
		return
	}
	top := c.acked[len(c.acked)-1]
	if top.intid != uint32(v) {
		return
	}
	c.acked = c.acked[:len(c.acked)-1]
	if c.cctlr&v3EOIModeBit == 0 {
		m.deactivate(s.core, top.intid)
	}
}

func (s *V3SysRegs) WriteDIR(v uint64) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deactivate(s.core, uint32(v))
}

func (m *V3Machine) deactivate(core int, intid uint32) {
	if intid < 32 {
		m.cores[core].active &^= 1 << intid
	} else if intid <= m.maxSPI {
		m.active.clear(intid)
	}
}

func (s *V3SysRegs) WriteSGI1R(v uint64) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	sgi := uint32(v>>24) & 0xF
	if v&(1<<40) != 0 {
		// Everyone but the sender.
		for i := range m.cores {
			if i != s.core {
				m.cores[i].pending |= 1 << sgi
			}
		}
		return
	}
	list := uint16(v)
	aff1 := uint8(v >> 16)
	aff2 := uint8(v >> 32)
	aff3 := uint8(v >> 48)
	for i := range m.cores {
		aff := m.cores[i].aff
		if aff.Aff3() != aff3 || aff.Aff2() != aff2 || aff.Aff1() != aff1 {
			continue
		}
		if aff.Aff0() < 16 && list&(1<<aff.Aff0()) != 0 {
			m.cores[i].pending |= 1 << sgi
		}
	}
}

func (s *V3SysRegs) ReadRPR() uint64 {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(s.c().runningPrio())
}
