// Package platform describes where a board puts its interrupt
// controller. Register windows come from a YAML description so tools
// and tests can target different boards without rebuilding.
package platform

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Address is a physical address. YAML accepts decimal or 0x-prefixed
// hex, since hardware documentation uses both.
type Address uint64

// UnmarshalYAML implements yaml.Unmarshaler for Address.
func (a *Address) UnmarshalYAML(value *yaml.Node) error {
	v, err := strconv.ParseUint(value.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("platform: bad address %q: %w", value.Value, err)
	}
	*a = Address(v)
	return nil
}

// Window is a physical register window.
type Window struct {
	Base Address `yaml:"base"`
	Size Address `yaml:"size"`
}

// IsZero reports whether the window was left out of the description.
func (w Window) IsZero() bool { return w.Base == 0 && w.Size == 0 }

// GICConfig locates the interrupt controller frames. Distributor is
// always needed; CPU applies to GICv2, Redistributor to GICv3.
type GICConfig struct {
	// Version pins the expected GIC version ("v2" or "v3"). Empty
	// means detect from the hardware.
	Version string `yaml:"version,omitempty"`

	Distributor   Window `yaml:"distributor"`
	CPU           Window `yaml:"cpu,omitempty"`
	Redistributor Window `yaml:"redistributor,omitempty"`

	// RedistributorStride overrides the spacing between redistributor
	// frames. Zero means the standard two-frame layout.
	RedistributorStride uint32 `yaml:"redistributor_stride,omitempty"`
}

// Config is a board description.
type Config struct {
	// Name identifies the board, for logs only.
	Name string `yaml:"name"`

	GIC GICConfig `yaml:"gic"`
}

// Load reads and validates a board description from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("platform: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse reads and validates a board description from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("platform: parsing config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the description for the frames its GIC version
// needs.
func (c *Config) Validate() error {
	g := &c.GIC
	if g.Distributor.IsZero() {
		return fmt.Errorf("platform: gic.distributor window is required")
	}
	switch g.Version {
	case "":
	case "v2":
		if g.CPU.IsZero() {
			return fmt.Errorf("platform: GICv2 needs a gic.cpu window")
		}
	case "v3":
		if g.Redistributor.IsZero() {
			return fmt.Errorf("platform: GICv3 needs a gic.redistributor window")
		}
	default:
		return fmt.Errorf("platform: unknown gic.version %q", g.Version)
	}
	return nil
}
