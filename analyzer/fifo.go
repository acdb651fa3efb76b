// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// axiFIFO is the receive side of a Xilinx AXI4-Stream FIFO (pg080).
type axiFIFO struct {
	dev *Device

	isr  reg32
	rdfr reg32
	rdfo reg32
	rdfd reg32
	rlr  reg32
}

func newAXIFIFO(dev *Device, rw rwer, offset int64) axiFIFO {
	return axiFIFO{
		dev:  dev,
		isr:  newReg32(dev, rw, offset+regs.PEAK_ISR_OFF),
		rdfr: newReg32(dev, rw, offset+regs.PEAK_RDFR_OFF),
		rdfo: newReg32(dev, rw, offset+regs.PEAK_RDFO_OFF),
		rdfd: newReg32(dev, rw, offset+regs.PEAK_RDFD_OFF),
		rlr:  newReg32(dev, rw, offset+regs.PEAK_RLR_OFF),
	}
}

// occupancy returns the number of 32-bit words available in the FIFO.
func (fifo *axiFIFO) occupancy() uint32 {
	return (fifo.rdfo.r() & regs.RDFO_MASK) >> 2
}

// drain pops at most len(dst) words into dst.
// It returns the number of words read and the occupancy seen before reading.
// It never waits for data.
// Reading stops at the first register error: the words popped before it
// are in dst[:n] and the error is left in dev.err.
func (fifo *axiFIFO) drain(dst []uint32) (int, uint32) {
	occ := fifo.occupancy()
	if fifo.dev.err != nil {
		return 0, 0
	}
	n := int(occ)
	if n > len(dst) {
		n = len(dst)
	}
	for i := range dst[:n] {
		v := fifo.rdfd.r()
		if fifo.dev.err != nil {
			return i, occ
		}
		dst[i] = v
	}
	return n, occ
}

func (fifo *axiFIFO) reset() {
	fifo.rdfr.w(regs.RDFR_RESET_KEY)
}
