//go:build arm64

package v3

// HardwareSysRegs accesses the real ICC_* system registers of the
// current core. Only meaningful at an exception level that has access
// to the physical CPU interface; usable from Go programs running as a
// kernel or under a test harness that traps the accesses.
type HardwareSysRegs struct{}

func (HardwareSysRegs) ReadMPIDR() uint64     { return readMPIDR() }
func (HardwareSysRegs) ReadSRE() uint64       { return readSRE() }
func (HardwareSysRegs) WriteSRE(v uint64)     { writeSRE(v) }
func (HardwareSysRegs) WritePMR(v uint64)     { writePMR(v) }
func (HardwareSysRegs) WriteBPR1(v uint64)    { writeBPR1(v) }
func (HardwareSysRegs) WriteIGrpEn0(v uint64) { writeIGrpEn0(v) }
func (HardwareSysRegs) WriteIGrpEn1(v uint64) { writeIGrpEn1(v) }
func (HardwareSysRegs) ReadIGrpEn1() uint64   { return readIGrpEn1() }
func (HardwareSysRegs) ReadCtlr() uint64      { return readICCCtlr() }
func (HardwareSysRegs) WriteCtlr(v uint64)    { writeICCCtlr(v) }
func (HardwareSysRegs) ReadIAR1() uint64      { return readIAR1() }
func (HardwareSysRegs) WriteEOIR1(v uint64)   { writeEOIR1(v) }
func (HardwareSysRegs) WriteDIR(v uint64)     { writeDIR(v) }
func (HardwareSysRegs) WriteSGI1R(v uint64)   { writeSGI1R(v) }
func (HardwareSysRegs) ReadRPR() uint64       { return readRPR() }
func (HardwareSysRegs) ReadHPPIR1() uint64    { return readHPPIR1() }
func (HardwareSysRegs) ISB()                  { isb() }

func readMPIDR() uint64
func readSRE() uint64
func writeSRE(v uint64)
func writePMR(v uint64)
func writeBPR1(v uint64)
func writeIGrpEn0(v uint64)
func writeIGrpEn1(v uint64)
func readIGrpEn1() uint64
func readICCCtlr() uint64
func writeICCCtlr(v uint64)
func readIAR1() uint64
func writeEOIR1(v uint64)
func writeDIR(v uint64)
func writeSGI1R(v uint64)
func readRPR() uint64
func readHPPIR1() uint64
func isb()
