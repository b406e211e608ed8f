//go:build linux

package mmio

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapped is a Region backed by an mmap of a physical register window.
type Mapped struct {
	Region
	data []byte
}

// Map maps size bytes of the physical register window at base through
// the given device file (typically /dev/mem or a UIO node). base and
// size must be page-aligned. The mapping is uncached as far as the
// kernel allows it (O_SYNC).
func Map(path string, base uint64, size uint64) (*Mapped, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: open %s: %w", path, err)
	}
	data, err := unix.Mmap(fd, int64(base), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	// The mapping outlives the descriptor.
	unix.Close(fd)
	if err != nil {
		return nil, fmt.Errorf("mmio: map %#x+%#x from %s: %w", base, size, path, err)
	}
	return &Mapped{
		Region: AtAddress(uintptr(unsafe.Pointer(&data[0]))),
		data:   data,
	}, nil
}

// Close releases the mapping. The Region must not be used afterwards.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return fmt.Errorf("mmio: unmap: %w", err)
	}
	return nil
}
