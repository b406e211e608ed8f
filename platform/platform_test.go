package platform

import (
	"strings"
	"testing"
)

const qemuVirtYAML = `
name: qemu-virt
gic:
  version: v3
  distributor:
    base: 0x08000000
    size: 0x10000
  redistributor:
    base: 0x080a0000
    size: 0xf60000
`

func TestParse(t *testing.T) {
	config, err := Parse([]byte(qemuVirtYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if config.Name != "qemu-virt" {
		t.Errorf("Name = %q", config.Name)
	}
	if got := config.GIC.Distributor.Base; got != 0x08000000 {
		t.Errorf("distributor base = %#x, want 0x08000000", got)
	}
	if got := config.GIC.Redistributor.Size; got != 0xf60000 {
		t.Errorf("redistributor size = %#x, want 0xf60000", got)
	}
}

func TestParseDecimalAddress(t *testing.T) {
	config, err := Parse([]byte("gic:\n  distributor:\n    base: 4096\n    size: 65536\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := config.GIC.Distributor.Base; got != 4096 {
		t.Errorf("distributor base = %d, want 4096", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing distributor",
			yaml:    "name: x\n",
			wantErr: "distributor window",
		},
		{
			name:    "v2 without cpu window",
			yaml:    "gic:\n  version: v2\n  distributor: {base: 0x1000, size: 0x1000}\n",
			wantErr: "gic.cpu",
		},
		{
			name:    "v3 without redistributor window",
			yaml:    "gic:\n  version: v3\n  distributor: {base: 0x1000, size: 0x1000}\n",
			wantErr: "gic.redistributor",
		},
		{
			name:    "unknown version",
			yaml:    "gic:\n  version: v9\n  distributor: {base: 0x1000, size: 0x1000}\n",
			wantErr: "unknown gic.version",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Parse error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseBadAddress(t *testing.T) {
	if _, err := Parse([]byte("gic:\n  distributor:\n    base: nope\n    size: 0x1000\n")); err == nil {
		t.Fatalf("Parse accepted a non-numeric address")
	}
}
