package irq

import (
	"fmt"

	"github.com/tinyrange/gic/internal/fdt"
)

// Device-tree interrupt type cells, as used by the Linux GIC binding.
const (
	fdtTypeSPI       = 0
	fdtTypePPI       = 1
	fdtTypeESPI      = 2
	fdtTypeEPPI      = 3
	fdtTypeLPI       = 4
	fdtTypePartition = 5
)

// Trigger flag cells (the low four bits of the third cell).
const (
	fdtTriggerNone        = 0x0
	fdtTriggerEdgeRising  = 0x1
	fdtTriggerEdgeFalling = 0x2
	fdtTriggerEdgeBoth    = 0x3
	fdtTriggerLevelHigh   = 0x4
	fdtTriggerLevelLow    = 0x8
	fdtTriggerSenseMask   = 0xf
)

// Config is a decoded device-tree interrupt specifier.
type Config struct {
	ID      IntID
	Trigger Trigger
}

// ParseConfig decodes the cells of a device-tree "interrupts" property
// entry into an interrupt ID and trigger mode, following the Linux GIC
// binding:
//
//   - a single cell below 16 is an SGI, always edge-triggered;
//   - otherwise three cells [type, number, flags] are required, where
//     type selects the SPI/PPI/ESPI/EPPI/LPI/partition number space and
//     flags selects the trigger.
//
// Partitioned PPIs with number >= 16 fold into the extended PPI range
// at number-16; smaller numbers fold into the regular PPI range. The
// threshold is kept exactly as Linux implements it, for device-tree
// compatibility.
func ParseConfig(cells []uint32) (Config, error) {
	if len(cells) == 1 && cells[0] < sgiEnd {
		return Config{ID: SGI(cells[0]), Trigger: Edge}, nil
	}
	if len(cells) < 3 {
		return Config{}, fmt.Errorf("irq: interrupt specifier needs 3 cells, got %d", len(cells))
	}

	irqType := cells[0]
	num := cells[1]
	flags := cells[2] & fdtTriggerSenseMask

	var id uint32
	switch irqType {
	case fdtTypeSPI:
		id = spiStart + num
	case fdtTypePPI:
		id = ppiStart + num
	case fdtTypeESPI:
		id = espiStart + num
	case fdtTypeEPPI:
		id = eppiStart + num
	case fdtTypeLPI:
		id = num
	case fdtTypePartition:
		if num >= 16 {
			id = eppiStart + num - 16
		} else {
			id = ppiStart + num
		}
	default:
		return Config{}, fmt.Errorf("irq: unknown interrupt type cell %d", irqType)
	}

	var trigger Trigger
	switch flags {
	case fdtTriggerEdgeRising, fdtTriggerEdgeFalling, fdtTriggerEdgeBoth:
		trigger = Edge
	case fdtTriggerLevelHigh, fdtTriggerLevelLow:
		trigger = Level
	case fdtTriggerNone:
		if irqType != fdtTypePartition {
			return Config{}, fmt.Errorf("irq: trigger flags required for interrupt type %d", irqType)
		}
		// Partitioned PPIs may omit the trigger; Linux defaults them
		// to level.
		trigger = Level
	default:
		return Config{}, fmt.Errorf("irq: invalid trigger flags %#x", flags)
	}

	return Config{ID: Raw(id), Trigger: trigger}, nil
}

// ParseFDT decodes every interrupt specifier of the device node at
// path in a flattened device tree blob. The specifier width comes from
// the node's interrupt parent; since this package only understands the
// GIC binding, the width is fixed at three cells (single-cell SGI
// specifiers only appear in artificial trees, never under a GIC
// parent).
func ParseFDT(blob []byte, path string) ([]Config, error) {
	root, err := fdt.Parse(blob)
	if err != nil {
		return nil, err
	}
	node, ok := root.Find(path)
	if !ok {
		return nil, fmt.Errorf("irq: no node %q in device tree", path)
	}
	cells := node.PropU32s("interrupts")
	if cells == nil {
		return nil, fmt.Errorf("irq: node %q has no interrupts property", path)
	}
	const width = 3
	if len(cells)%width != 0 {
		return nil, fmt.Errorf("irq: node %q interrupts property has %d cells, not a multiple of %d",
			path, len(cells), width)
	}
	var out []Config
	for i := 0; i < len(cells); i += width {
		config, err := ParseConfig(cells[i : i+width])
		if err != nil {
			return nil, fmt.Errorf("irq: node %q specifier %d: %w", path, i/width, err)
		}
		out = append(out, config)
	}
	return out, nil
}
