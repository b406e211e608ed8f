package v2

// GIC distributor register offsets (GICv2). Byte-exact per the
// architecture specification; these are a wire-format contract with
// the hardware.
const (
	gicdCtlr       = 0x0000 // Distributor Control Register
	gicdTyper      = 0x0004 // Interrupt Controller Type Register
	gicdIidr       = 0x0008 // Distributor Implementer Identification Register
	gicdIgroupr    = 0x0080 // Interrupt Group Registers
	gicdIsenabler  = 0x0100 // Interrupt Set-Enable Registers
	gicdIcenabler  = 0x0180 // Interrupt Clear-Enable Registers
	gicdIspendr    = 0x0200 // Interrupt Set-Pending Registers
	gicdIcpendr    = 0x0280 // Interrupt Clear-Pending Registers
	gicdIsactiver  = 0x0300 // Interrupt Set-Active Registers
	gicdIcactiver  = 0x0380 // Interrupt Clear-Active Registers
	gicdIpriorityr = 0x0400 // Interrupt Priority Registers (byte per interrupt)
	gicdItargetsr  = 0x0800 // Interrupt Processor Targets Registers (byte per interrupt)
	gicdIcfgr      = 0x0C00 // Interrupt Configuration Registers (2 bits per interrupt)
	gicdSgir       = 0x0F00 // Software Generated Interrupt Register
	gicdPidr2      = 0x0FE8 // Peripheral ID2 Register
)

// Register array sizes, in 32-bit words.
const (
	gicdBitmapWords = 0x20 // enable/pending/active/group arrays
	gicdIcfgrWords  = 0x40
)

// GICD_CTLR bits.
const (
	gicdCtlrEnableGrp0 = 1 << 0
	gicdCtlrEnableGrp1 = 1 << 1
)

// GICD_TYPER fields.
const (
	gicdTyperITLinesMask = 0x1F
	gicdTyperCPUShift    = 5
	gicdTyperCPUMask     = 0x7
)

// GICD_SGIR fields.
const (
	sgirTargetListShift = 16
	sgirFilterShift     = 24
)

// GICD_PIDR2 architecture revision field (bits [7:4]).
const pidr2ArchRevShift = 4

// CPU interface register offsets (GICv2).
const (
	giccCtlr  = 0x0000 // CPU Interface Control Register
	giccPmr   = 0x0004 // Interrupt Priority Mask Register
	giccBpr   = 0x0008 // Binary Point Register
	giccIar   = 0x000C // Interrupt Acknowledge Register
	giccEoir  = 0x0010 // End of Interrupt Register
	giccRpr   = 0x0014 // Running Priority Register
	giccHppir = 0x0018 // Highest Priority Pending Interrupt Register
	giccAbpr  = 0x001C // Aliased Binary Point Register
	giccIidr  = 0x00FC // CPU Interface Identification Register
	giccDir   = 0x1000 // Deactivate Interrupt Register
)

// GICC_CTLR bits.
const (
	giccCtlrEnableGrp0 = 1 << 0
	giccCtlrEnableGrp1 = 1 << 1
	giccCtlrAckCtl     = 1 << 2
	giccCtlrFIQEn      = 1 << 3
	giccCtlrEOIModeNS  = 1 << 9
)

// IAR/EOIR fields: interrupt ID in bits [9:0], source CPU (SGIs only)
// in bits [12:10].
const (
	iarIntIDMask = 0x3FF
	iarCPUShift  = 10
	iarCPUMask   = 0x7
)

// Default priority written to every interrupt during global init,
// mid-scale so runtime code can go either way from it.
const defaultPriority = 0xA0
