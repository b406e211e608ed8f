package irq

import (
	"testing"

	"github.com/tinyrange/gic/internal/fdt"
)

func TestParseConfig(t *testing.T) {
	cases := []struct {
		name    string
		cells   []uint32
		id      uint32
		trigger Trigger
	}{
		{"single cell SGI", []uint32{5}, 5, Edge},
		{"SPI level high", []uint32{0, 42, 4}, 74, Level},
		{"SPI edge rising", []uint32{0, 0, 1}, 32, Edge},
		{"PPI edge rising", []uint32{1, 2, 1}, 18, Edge},
		{"PPI level low", []uint32{1, 14, 8}, 30, Level},
		{"ESPI", []uint32{2, 3, 4}, 4099, Level},
		{"EPPI", []uint32{3, 1, 1}, 1057, Edge},
		{"LPI", []uint32{4, 8192, 1}, 8192, Edge},
		{"partition below 16", []uint32{5, 3, 4}, 19, Level},
		{"partition at 16 defaults level", []uint32{5, 16, 0}, 1056, Level},
		{"partition above 16", []uint32{5, 20, 1}, 1060, Edge},
		{"flags ignore high bits", []uint32{0, 1, 0x104}, 33, Level},
	}
	for _, tc := range cases {
		cfg, err := ParseConfig(tc.cells)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if cfg.ID.U32() != tc.id {
			t.Fatalf("%s: id = %d, want %d", tc.name, cfg.ID.U32(), tc.id)
		}
		if cfg.Trigger != tc.trigger {
			t.Fatalf("%s: trigger = %v, want %v", tc.name, cfg.Trigger, tc.trigger)
		}
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := []struct {
		name  string
		cells []uint32
	}{
		{"too few cells", []uint32{0, 42}},
		{"single cell too large", []uint32{16}},
		{"empty", nil},
		{"unknown type", []uint32{6, 0, 1}},
		{"none trigger for SPI", []uint32{0, 42, 0}},
		{"none trigger for PPI", []uint32{1, 2, 0}},
		{"bad trigger flags", []uint32{0, 42, 0x5}},
	}
	for _, tc := range cases {
		if _, err := ParseConfig(tc.cells); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

// buildTestTree fabricates a device tree with a UART wired to the GIC
// the way QEMU's virt machine describes it.
func buildTestTree(interrupts []uint32) []byte {
	b := fdt.NewBuilder()
	b.BeginNode("")
	b.AddPropertyString("compatible", "linux,dummy-virt")
	b.BeginNode("pl011@9000000")
	b.AddPropertyString("compatible", "arm,pl011")
	b.AddPropertyU32Array("interrupts", interrupts)
	b.EndNode()
	b.EndNode()
	return b.Build()
}

func TestParseFDT(t *testing.T) {
	blob := buildTestTree([]uint32{
		0, 1, 4, // SPI 33, level
		1, 11, 1, // PPI 27, edge
	})

	configs, err := ParseFDT(blob, "pl011")
	if err != nil {
		t.Fatalf("ParseFDT: %v", err)
	}
	want := []Config{
		{ID: SPI(1), Trigger: Level},
		{ID: PPI(11), Trigger: Edge},
	}
	if len(configs) != len(want) {
		t.Fatalf("got %d configs, want %d", len(configs), len(want))
	}
	for i := range want {
		if configs[i] != want[i] {
			t.Errorf("config %d = %+v, want %+v", i, configs[i], want[i])
		}
	}
}

func TestParseFDTErrors(t *testing.T) {
	blob := buildTestTree([]uint32{0, 1, 4})

	if _, err := ParseFDT(blob, "missing"); err == nil {
		t.Errorf("ParseFDT found a node that is not there")
	}
	if _, err := ParseFDT([]byte("not a device tree"), "pl011"); err == nil {
		t.Errorf("ParseFDT accepted garbage")
	}
	if _, err := ParseFDT(buildTestTree([]uint32{0, 1}), "pl011"); err == nil {
		t.Errorf("ParseFDT accepted a truncated specifier")
	}
}
