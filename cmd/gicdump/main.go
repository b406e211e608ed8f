//go:build linux

// Command gicdump maps an interrupt controller described by a board
// config and prints what it finds: version, line count, security
// configuration and capabilities. Needs /dev/mem access, so root.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tinyrange/gic"
	"github.com/tinyrange/gic/mmio"
	"github.com/tinyrange/gic/platform"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gicdump: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Board description YAML (required)")
	devMem := flag.String("mem", "/dev/mem", "Physical memory device")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -config board.yaml [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Inspect the GIC described by a board config.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if *configPath == "" {
		flag.Usage()
		return fmt.Errorf("-config is required")
	}

	config, err := platform.Load(*configPath)
	if err != nil {
		return err
	}
	slog.Debug("loaded board config", "name", config.Name)

	dist, err := mmio.Map(*devMem, uint64(config.GIC.Distributor.Base), uint64(config.GIC.Distributor.Size))
	if err != nil {
		return err
	}
	defer dist.Close()

	version, err := gic.Detect(dist)
	if err != nil {
		return err
	}
	fmt.Printf("board: %s\n", config.Name)
	fmt.Printf("version: %v\n", version)

	switch version {
	case gic.Version2:
		return dumpV2(config, dist)
	case gic.Version3:
		return dumpV3(config, dist, *devMem)
	}
	return nil
}

func dumpV2(config *platform.Config, dist *mmio.Mapped) error {
	// TYPER without touching any live state.
	typer := dist.Read32(0x4)
	fmt.Printf("spi lines: %d\n", 32*(typer&0x1F+1)-1)
	fmt.Printf("cpu interfaces: %d\n", (typer>>5)&0x7+1)
	fmt.Printf("security extensions: %v\n", typer&(1<<10) != 0)
	return nil
}

func dumpV3(config *platform.Config, dist *mmio.Mapped, devMem string) error {
	typer := dist.Read32(0x4)
	fmt.Printf("spi lines: %d\n", 32*(typer&0x1F+1)-1)
	fmt.Printf("id bits: %d\n", (typer>>19)&0x1F+1)
	fmt.Printf("lpis: %v\n", typer&(1<<17) != 0)
	fmt.Printf("mbis: %v\n", typer&(1<<16) != 0)
	fmt.Printf("security disabled: %v\n", dist.Read32(0)&(1<<6) != 0)

	w := config.GIC.Redistributor
	if w.IsZero() {
		return nil
	}
	redist, err := mmio.Map(devMem, uint64(w.Base), uint64(w.Size))
	if err != nil {
		return err
	}
	defer redist.Close()

	stride := config.GIC.RedistributorStride
	if stride == 0 {
		stride = 0x20000
	}
	for off := uint32(0); uint64(off) < uint64(w.Size); off += stride {
		typer := redist.Read64(off + 0x8)
		fmt.Printf("redistributor %d: affinity %d.%d.%d.%d\n",
			(typer>>8)&0xFFFF,
			uint8(typer>>56), uint8(typer>>48), uint8(typer>>40), uint8(typer>>32))
		if typer&(1<<4) != 0 {
			break
		}
	}
	return nil
}
