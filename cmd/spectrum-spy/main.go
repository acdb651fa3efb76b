// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spectrum-spy dumps the registers of the spectrum analyzer
// together with a decimated snapshot of the current spectrum.
package main // import "github.com/go-lpc/spectrum/cmd/spectrum-spy"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/spectrum"
	"github.com/go-lpc/spectrum/analyzer"
)

func main() {
	var (
		devmem = flag.String("devmem", "/dev/mem", "path to the physical memory device")
		decim  = flag.Int("decim", 64, "decimation factor of the spectrum snapshot")
		low    = flag.Int("low", 0, "first bin of the spectrum snapshot")
		high   = flag.Int("high", -1, "last bin of the spectrum snapshot (-1: last bin)")
		regs   = flag.Bool("regs", true, "dump registers")
	)

	log.SetPrefix("spectrum-spy: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(os.Stdout, *devmem, *decim, *low, *high, *regs,
		analyzer.WithLogOutput(os.Stderr, tlog.LvlWarning),
	)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(w io.Writer, devmem string, decim, low, high int, regs bool, opts ...analyzer.Option) error {
	dev, err := analyzer.NewDevice(devmem, opts...)
	if err != nil {
		return fmt.Errorf("could not create spectrum analyzer: %w", err)
	}
	defer dev.Close()

	err = dev.Open()
	if err != nil {
		return fmt.Errorf("could not open spectrum analyzer: %w", err)
	}

	if high < 0 {
		high = dev.Size() - 1
	}

	fmt.Fprintf(w, "------------------------------------------------\n")
	const layout = "2006-01-02 15:04:05 MST"
	fmt.Fprintf(w, "%v\n", time.Now().Format(layout))
	if v, _ := spectrum.Version(); v != "" {
		fmt.Fprintf(w, "version: %s\n", v)
	}

	if regs {
		err = dev.DumpRegisters(w)
		if err != nil {
			return fmt.Errorf("could not dump registers: %w", err)
		}
		err = dev.DumpFIFOStatus(w)
		if err != nil {
			return fmt.Errorf("could not dump FIFO status: %w", err)
		}
	}

	data, err := dev.SpectrumDecim(decim, low, high)
	if err != nil {
		return fmt.Errorf("could not read spectrum: %w", err)
	}

	navg, err := dev.NumAverages()
	if err != nil {
		return fmt.Errorf("could not read number of averages: %w", err)
	}

	fmt.Fprintf(w, "spectrum: bins=[%d, %d] decim=%d averages=%d frame=%v\n",
		low, high, decim, navg, dev.AcqTime(),
	)
	for i, v := range data {
		bin := low + i*decim
		hz, unit := humanize.ComputeSI(dev.Frequency(bin))
		fmt.Fprintf(w, "%6d %10.3f %sHz %14g\n", bin, hz, unit, v)
	}

	err = dev.Close()
	if err != nil {
		return fmt.Errorf("could not close spectrum analyzer: %w", err)
	}

	return nil
}
