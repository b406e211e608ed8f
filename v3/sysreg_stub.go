//go:build !arm64

package v3

// HardwareSysRegs only exists on arm64; this stub keeps the package
// compiling elsewhere so the register model and tests stay portable.
type HardwareSysRegs struct{}

func (HardwareSysRegs) ReadMPIDR() uint64   { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadSRE() uint64     { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteSRE(uint64)     { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WritePMR(uint64)     { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteBPR1(uint64)    { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteIGrpEn0(uint64) { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteIGrpEn1(uint64) { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadIGrpEn1() uint64 { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadCtlr() uint64    { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteCtlr(uint64)    { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadIAR1() uint64    { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteEOIR1(uint64)   { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteDIR(uint64)     { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) WriteSGI1R(uint64)   { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadRPR() uint64     { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ReadHPPIR1() uint64  { panic("v3: ICC system registers require arm64") }
func (HardwareSysRegs) ISB()                {}
