package mmio

import "encoding/binary"

// Mem is a RAM-backed Region for tests and register modelling. Reads
// and writes are plain little-endian memory accesses with none of the
// side effects real device registers have.
type Mem struct {
	buf []byte
}

// NewMem returns a zeroed RAM-backed region of the given size.
func NewMem(size uint32) *Mem {
	return &Mem{buf: make([]byte, size)}
}

// Bytes exposes the backing store.
func (m *Mem) Bytes() []byte { return m.buf }

func (m *Mem) Read8(off uint32) uint8 { return m.buf[off] }

func (m *Mem) Write8(off uint32, v uint8) { m.buf[off] = v }

func (m *Mem) Read32(off uint32) uint32 {
	return binary.LittleEndian.Uint32(m.buf[off:])
}

func (m *Mem) Write32(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.buf[off:], v)
}

func (m *Mem) Read64(off uint32) uint64 {
	return binary.LittleEndian.Uint64(m.buf[off:])
}

func (m *Mem) Write64(off uint32, v uint64) {
	binary.LittleEndian.PutUint64(m.buf[off:], v)
}
