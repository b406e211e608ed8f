package v3

// SysRegs is the ICC_* system register file of the current core. GICv3
// moved the CPU interface out of memory-mapped space into system
// registers, so everything here is per-core state reachable only from
// that core.
//
// HardwareSysRegs provides the real register file on arm64. Tests
// substitute a software model.
type SysRegs interface {
	// ReadMPIDR returns MPIDR_EL1, identifying the current core.
	ReadMPIDR() uint64

	// ReadSRE and WriteSRE access ICC_SRE_EL1, which switches the CPU
	// interface between the memory-mapped and system-register views.
	ReadSRE() uint64
	WriteSRE(v uint64)

	// WritePMR sets the priority mask; only interrupts of higher
	// priority (numerically lower) than the mask are signalled.
	WritePMR(v uint64)

	// WriteBPR1 sets the group 1 binary point register.
	WriteBPR1(v uint64)

	// WriteIGrpEn0 and WriteIGrpEn1 gate signalling of group 0 and
	// group 1 interrupts to this core.
	WriteIGrpEn0(v uint64)
	WriteIGrpEn1(v uint64)
	ReadIGrpEn1() uint64

	// ReadCtlr and WriteCtlr access ICC_CTLR_EL1 (EOI mode lives
	// here).
	ReadCtlr() uint64
	WriteCtlr(v uint64)

	// ReadIAR1 acknowledges the highest-priority pending group 1
	// interrupt and returns its INTID.
	ReadIAR1() uint64

	// WriteEOIR1 signals end of interrupt (priority drop) for a
	// group 1 interrupt.
	WriteEOIR1(v uint64)

	// WriteDIR deactivates an interrupt when EOI is split into
	// priority drop and deactivation.
	WriteDIR(v uint64)

	// WriteSGI1R generates a group 1 SGI.
	WriteSGI1R(v uint64)

	// ReadRPR returns the running priority.
	ReadRPR() uint64

	// ReadHPPIR1 returns the highest-priority pending group 1
	// interrupt without acknowledging it.
	ReadHPPIR1() uint64

	// ISB orders prior system register writes against subsequent
	// instructions.
	ISB()
}
