package v3

// GICv3 distributor register offsets. Byte-exact per the architecture
// specification; a wire-format contract with the hardware.
const (
	gicdCtlr      = 0x0000 // Distributor Control Register
	gicdTyper     = 0x0004 // Interrupt Controller Type Register
	gicdIidr      = 0x0008 // Distributor Implementer Identification Register
	gicdTyper2    = 0x000C // Interrupt Controller Type Register 2
	gicdStatusr   = 0x0010 // Error Reporting Status Register
	gicdSetspiNSR = 0x0040 // Set SPI Register (non-secure)
	gicdClrspiNSR = 0x0048 // Clear SPI Register (non-secure)

	gicdIgroupr    = 0x0080 // Interrupt Group Registers
	gicdIsenabler  = 0x0100 // Interrupt Set-Enable Registers
	gicdIcenabler  = 0x0180 // Interrupt Clear-Enable Registers
	gicdIspendr    = 0x0200 // Interrupt Set-Pending Registers
	gicdIcpendr    = 0x0280 // Interrupt Clear-Pending Registers
	gicdIsactiver  = 0x0300 // Interrupt Set-Active Registers
	gicdIcactiver  = 0x0380 // Interrupt Clear-Active Registers
	gicdIpriorityr = 0x0400 // Interrupt Priority Registers (byte per interrupt)
	gicdIcfgr      = 0x0C00 // Interrupt Configuration Registers (2 bits per interrupt)
	gicdIgrpmodr   = 0x0D00 // Interrupt Group Modifier Registers
	gicdNsacr      = 0x0E00 // Non-secure Access Control Registers
	gicdInmir      = 0x0F80 // Non-maskable Interrupt Registers

	gicdIrouter = 0x6000 // Interrupt Routing Registers, 64-bit, indexed by INTID
	gicdPidr2   = 0xFFE8 // Peripheral ID2 Register
)

const (
	gicdBitmapWords = 0x20
	gicdIcfgrWords  = 0x40
)

// GICD_CTLR bits. The register layout depends on the security state of
// the access; these cover the three views.
const (
	// Common.
	gicdCtlrDS  = 1 << 6
	gicdCtlrRWP = 1 << 31

	// Secure view.
	gicdCtlrEnableGrp0S  = 1 << 0
	gicdCtlrEnableGrp1NS = 1 << 1
	gicdCtlrEnableGrp1S  = 1 << 2
	gicdCtlrAReS         = 1 << 4
	gicdCtlrAReNSSecure  = 1 << 5

	// Non-secure view.
	gicdCtlrEnableGrp1  = 1 << 0
	gicdCtlrEnableGrp1A = 1 << 1
	gicdCtlrAReNS       = 1 << 4

	// Single security state (DS=1) view.
	gicdCtlrOneEnableGrp0 = 1 << 0
	gicdCtlrOneEnableGrp1 = 1 << 1
	gicdCtlrOneARE        = 1 << 4
)

// GICD_TYPER fields.
const (
	gicdTyperITLinesMask  = 0x1F
	gicdTyperCPUShift     = 5
	gicdTyperCPUMask      = 0x7
	gicdTyperSecurityExtn = 1 << 10
	gicdTyperMBIS         = 1 << 16
	gicdTyperLPIS         = 1 << 17
	gicdTyperIDBitsShift  = 19
	gicdTyperIDBitsMask   = 0x1F
)

// GICD_IROUTER fields.
const (
	irouterAff0Shift = 0
	irouterAff1Shift = 8
	irouterAff2Shift = 16
	irouterAff3Shift = 32
	irouterIRM       = 1 << 31 // route to any participating core
)

// GICD_PIDR2 architecture revision field (bits [7:4]).
const pidr2ArchRevShift = 4

// Redistributor frames. Each core's redistributor is two 64KiB frames:
// RD_base for control and LPIs, SGI_base for SGIs and PPIs. GICv4 adds
// two more frames; this driver targets the v3 layout.
const (
	// RedistStride is the distance between consecutive redistributors
	// in the mapped region.
	RedistStride = 0x20000

	gicrSGIBase = 0x10000
)

// RD_base register offsets.
const (
	gicrCtlr  = 0x0000 // Redistributor Control Register
	gicrIidr  = 0x0004 // Implementer Identification Register
	gicrTyper = 0x0008 // Redistributor Type Register (64-bit)
	gicrWaker = 0x0014 // Redistributor Wake Register
	gicrPidr2 = 0xFFE8 // Peripheral ID2 Register
)

// GICR_CTLR bits.
const (
	gicrCtlrEnableLPIs = 1 << 0
	gicrCtlrRWP        = 1 << 3
)

// GICR_TYPER fields (64-bit register).
const (
	gicrTyperLast          = 1 << 4
	gicrTyperProcNumShift  = 8
	gicrTyperProcNumMask   = 0xFFFF
	gicrTyperAffinityShift = 32
)

// GICR_WAKER bits.
const (
	gicrWakerProcessorSleep = 1 << 1
	gicrWakerChildrenAsleep = 1 << 2
)

// SGI_base register offsets (relative to the frame, add gicrSGIBase).
const (
	gicrIgroupr0   = gicrSGIBase + 0x0080
	gicrIsenabler0 = gicrSGIBase + 0x0100
	gicrIcenabler0 = gicrSGIBase + 0x0180
	gicrIspendr0   = gicrSGIBase + 0x0200
	gicrIcpendr0   = gicrSGIBase + 0x0280
	gicrIsactiver0 = gicrSGIBase + 0x0300
	gicrIcactiver0 = gicrSGIBase + 0x0380
	gicrIpriorityr = gicrSGIBase + 0x0400
	gicrIcfgr      = gicrSGIBase + 0x0C00 // ICFGR0 (SGIs) then ICFGR1 (PPIs)
	gicrIgrpmodr0  = gicrSGIBase + 0x0D00
)

// ICC_SGI1R_EL1 fields.
const (
	sgirTargetListMask = 0xFFFF
	sgirAff1Shift      = 16
	sgirIntIDShift     = 24
	sgirAff2Shift      = 32
	sgirIRM            = uint64(1) << 40
	sgirAff3Shift      = 48
)

// ICC_CTLR_EL1 bits.
const iccCtlrEOIMode = 1 << 1

// ICC_SRE_EL1 bits.
const iccSreSRE = 1 << 0

// Default priority written during resets, mid-scale.
const defaultPriority = 0xA0

// Spin bounds for register-write-pending waits. Register writes that
// have not completed after this many polls indicate broken hardware.
const (
	rwpSpinLimit  = 10000
	wakeSpinLimit = 10000
)
