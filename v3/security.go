package v3

import "github.com/tinyrange/gic/mmio"

// SecurityState describes how the distributor partitions interrupt
// groups between security states. It decides which GICD_CTLR view the
// driver programs and which group registers get touched during init.
type SecurityState int

const (
	// SecuritySingle means the distributor supports one security
	// state (GICD_CTLR.DS is set). Group registers have their plain
	// meaning and the one-state CTLR view applies.
	SecuritySingle SecurityState = iota

	// SecuritySecure means two security states are supported and the
	// driver's accesses are Secure.
	SecuritySecure

	// SecurityNonSecure means two security states are supported and
	// the driver's accesses are Non-secure.
	SecurityNonSecure
)

func (s SecurityState) String() string {
	switch s {
	case SecuritySingle:
		return "single"
	case SecuritySecure:
		return "secure"
	case SecurityNonSecure:
		return "non-secure"
	default:
		return "unknown"
	}
}

// detectSecurity classifies the distributor's security configuration.
//
// DS set in GICD_CTLR means a single state. Otherwise the driver
// probes GICD_NSACR: writes to it only stick for Secure accesses, so a
// test pattern that reads back tells Secure from Non-secure. The
// probed register is restored afterwards.
func detectSecurity(gicd mmio.Region) SecurityState {
	if gicd.Read32(gicdCtlr)&gicdCtlrDS != 0 {
		return SecuritySingle
	}
	old := gicd.Read32(gicdNsacr)
	gicd.Write32(gicdNsacr, 0x2)
	if gicd.Read32(gicdNsacr)&0x3 == 0x2 {
		gicd.Write32(gicdNsacr, old)
		return SecuritySecure
	}
	return SecurityNonSecure
}
