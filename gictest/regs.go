package gictest

// Register offsets mirrored from the architecture. The models keep
// their own copies; the point of the exercise is that driver and model
// agree on the wire layout independently.
const (
	distCtlr      = 0x0000
	distTyper     = 0x0004
	distIidr      = 0x0008
	distSetspiNSR = 0x0040
	distClrspiNSR = 0x0048

	distIgroupr    = 0x0080
	distIsenabler  = 0x0100
	distIcenabler  = 0x0180
	distIspendr    = 0x0200
	distIcpendr    = 0x0280
	distIsactiver  = 0x0300
	distIcactiver  = 0x0380
	distIpriorityr = 0x0400
	distItargetsr  = 0x0800 // v2 only
	distIcfgr      = 0x0C00
	distIgrpmodr   = 0x0D00
	distNsacr      = 0x0E00
	distSgir       = 0x0F00 // v2 only
	distPidr2V2    = 0x0FE8
	distIrouter    = 0x6000 // v3 only
	distPidr2V3    = 0xFFE8

	distCtlrDS  = 1 << 6
	distCtlrRWP = 1 << 31
)

const (
	redistCtlr    = 0x0000
	redistTyper   = 0x0008
	redistWaker   = 0x0014
	redistSGIBase = 0x10000

	redistIgroupr0   = redistSGIBase + 0x0080
	redistIsenabler0 = redistSGIBase + 0x0100
	redistIcenabler0 = redistSGIBase + 0x0180
	redistIspendr0   = redistSGIBase + 0x0200
	redistIcpendr0   = redistSGIBase + 0x0280
	redistIsactiver0 = redistSGIBase + 0x0300
	redistIcactiver0 = redistSGIBase + 0x0380
	redistIpriorityr = redistSGIBase + 0x0400
	redistIcfgr      = redistSGIBase + 0x0C00
	redistIgrpmodr0  = redistSGIBase + 0x0D00

	redistCtlrEnableLPIs = 1 << 0
	redistCtlrRWP        = 1 << 3
	redistTyperLast      = 1 << 4
	redistWakerSleep     = 1 << 1
	redistWakerChildren  = 1 << 2

	redistStride = 0x20000
)

const (
	cpuifCtlr  = 0x0000
	cpuifPmr   = 0x0004
	cpuifBpr   = 0x0008
	cpuifIar   = 0x000C
	cpuifEoir  = 0x0010
	cpuifRpr   = 0x0014
	cpuifHppir = 0x0018
	cpuifAbpr  = 0x001C
	cpuifIidr  = 0x00FC
	cpuifDir   = 0x1000

	cpuifCtlrEnableGrp0 = 1 << 0
	cpuifCtlrEnableGrp1 = 1 << 1
	cpuifCtlrEOIModeNS  = 1 << 9
)
