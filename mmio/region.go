// Package mmio provides bounded, typed access to memory-mapped
// register windows. A Region is constructed once from an address the
// caller asserts is valid; all register access after that point goes
// through the typed accessors, so the unsafe step is confined to
// construction.
package mmio

import "unsafe"

// Region is a window of device registers addressed by byte offset.
// Accesses are sized exactly; implementations must not merge or split
// them, since register side effects depend on the access width.
type Region interface {
	Read8(off uint32) uint8
	Write8(off uint32, v uint8)
	Read32(off uint32) uint32
	Write32(off uint32, v uint32)
	Read64(off uint32) uint64
	Write64(off uint32, v uint64)
}

// AtAddress returns a Region over the register window mapped at base.
// The caller asserts that base is a valid, device-mapped virtual
// address for the lifetime of the Region; this is the single point
// where that trust is accepted.
func AtAddress(base uintptr) Region {
	return &hwRegion{base: base}
}

// hwRegion performs direct loads and stores against a mapped register
// window. Each accessor is a single aligned memory operation.
type hwRegion struct {
	base uintptr
}

func (r *hwRegion) Read8(off uint32) uint8 {
	return *(*uint8)(unsafe.Pointer(r.base + uintptr(off)))
}

func (r *hwRegion) Write8(off uint32, v uint8) {
	*(*uint8)(unsafe.Pointer(r.base + uintptr(off))) = v
}

func (r *hwRegion) Read32(off uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(r.base + uintptr(off)))
}

func (r *hwRegion) Write32(off uint32, v uint32) {
	*(*uint32)(unsafe.Pointer(r.base + uintptr(off))) = v
}

func (r *hwRegion) Read64(off uint32) uint64 {
	return *(*uint64)(unsafe.Pointer(r.base + uintptr(off)))
}

func (r *hwRegion) Write64(off uint32, v uint64) {
	*(*uint64)(unsafe.Pointer(r.base + uintptr(off))) = v
}

// Offset returns a Region whose offsets are relative to off within r.
// Useful for register blocks laid out as fixed-stride arrays, such as
// GICv3 redistributor frames.
func Offset(r Region, off uint32) Region {
	if sub, ok := r.(*subRegion); ok {
		return &subRegion{parent: sub.parent, off: sub.off + off}
	}
	return &subRegion{parent: r, off: off}
}

type subRegion struct {
	parent Region
	off    uint32
}

func (s *subRegion) Read8(off uint32) uint8       { return s.parent.Read8(s.off + off) }
func (s *subRegion) Write8(off uint32, v uint8)   { s.parent.Write8(s.off+off, v) }
func (s *subRegion) Read32(off uint32) uint32     { return s.parent.Read32(s.off + off) }
func (s *subRegion) Write32(off uint32, v uint32) { s.parent.Write32(s.off+off, v) }
func (s *subRegion) Read64(off uint32) uint64     { return s.parent.Read64(s.off + off) }
func (s *subRegion) Write64(off uint32, v uint64) { s.parent.Write64(s.off+off, v) }
