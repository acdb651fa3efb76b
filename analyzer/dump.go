// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// DumpFIFOStatus writes the status of the peak FIFO to w.
func (dev *Device) DumpFIFOStatus(w io.Writer) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	var (
		fifo   = &dev.regs.fifo
		buf    = bufio.NewWriter(w)
		printf = func(format string, args ...interface{}) {
			_, e := fmt.Fprintf(buf, format, args...)
			if err == nil {
				err = e
			}
		}
	)
	defer buf.Flush()

	printf("---- peak FIFO status -------\n")
	printf("occupancy:\t\t%d\n", fifo.occupancy())
	printf("receive length:\t\t%d\n", fifo.rlr.r())

	reg := fifo.isr.r()
	printf("isr:    ")
	printf("\t rpure:\t %d", flag32(reg, regs.ISR_RPURE))
	printf("\t rpore:\t %d", flag32(reg, regs.ISR_RPORE))
	printf("\t rpue:\t %d", flag32(reg, regs.ISR_RPUE))
	printf("\t rc:\t %d", flag32(reg, regs.ISR_RC))
	printf("\t rfpf:\t %d", flag32(reg, regs.ISR_RFPF))
	printf("\t rfpe:\t %d\n", flag32(reg, regs.ISR_RFPE))

	stats := dev.peak.stats
	printf("drains:\t\t%d\n", stats.Drains)
	printf("records:\t%d\n", stats.Records)
	printf("overflows:\t%d\n", stats.Overflows)
	printf("lost:\t\t%d\n", stats.Lost)
	printf("max fill:\t%d\n", stats.MaxFill)
	printf("\n")

	if e := dev.ioerr(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return fmt.Errorf("analyzer: could not dump peak FIFO status: %w", err)
	}

	err = buf.Flush()
	if err != nil {
		return fmt.Errorf("analyzer: could not dump peak FIFO status: %w", err)
	}

	return nil
}

// DumpRegisters writes the content of the config and status registers to w.
func (dev *Device) DumpRegisters(w io.Writer) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	rs := &dev.regs

	fmt.Fprintf(w, "sts.id=          0x%08x\n", rs.sts.id.r())
	fmt.Fprintf(w, "sts.dna=         0x%08x\n", rs.sts.dna.r())
	fmt.Fprintf(w, "cfg.led=         0x%08x\n", rs.cfg.led.r())
	fmt.Fprintf(w, "cfg.fft=         0x%08x\n", rs.cfg.fft.r())
	fmt.Fprintf(w, "cfg.offset=      0x%08x\n", rs.cfg.offset.r())
	fmt.Fprintf(w, "cfg.avg=         0x%08x\n", rs.cfg.avg.r())
	fmt.Fprintf(w, "cfg.addr.low=    %d\n", rs.cfg.addrLow.r())
	fmt.Fprintf(w, "cfg.addr.high=   %d\n", rs.cfg.addrHigh.r())
	fmt.Fprintf(w, "cfg.addr.reset=  %d\n", rs.cfg.addrReset.r())
	fmt.Fprintf(w, "sts.n-avg=       %d\n", rs.sts.nAvg.r())
	fmt.Fprintf(w, "sts.peak.addr=   %d\n", rs.sts.peakAdr.r())
	fmt.Fprintf(w, "sts.peak.max=    0x%08x\n", rs.sts.peakMax.r())
	fmt.Fprintf(w, "fifo.occupancy=  %d\n", rs.fifo.occupancy())

	return dev.ioerr()
}

// flag32 returns 1 if any bit of mask is set in word, 0 otherwise.
func flag32(word, mask uint32) uint32 {
	if word&mask != 0 {
		return 1
	}
	return 0
}
