// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// rwer gives 32-bit word access to a register window.
type rwer interface {
	ReadU32(off int64) (uint32, error)
	WriteU32(off int64, v uint32) error
}

type reg32 struct {
	r func() uint32
	w func(v uint32)
}

func newReg32(dev *Device, rw rwer, offset int64) reg32 {
	return reg32{
		r: func() uint32 {
			return dev.readU32(rw, offset)
		},
		w: func(v uint32) {
			dev.writeU32(rw, offset, v)
		},
	}
}

type pins struct {
	cfg struct {
		led       reg32
		fft       reg32
		offset    reg32
		avg       reg32
		addrLow   reg32
		addrHigh  reg32
		addrReset reg32
	}

	sts struct {
		id      reg32
		dna     reg32
		nAvg    reg32
		peakAdr reg32
		peakMax reg32
	}

	fifo axiFIFO
}

func (dev *Device) bindConfig(rw rwer) {
	dev.regs.cfg.led = newReg32(dev, rw, regs.LED_OFF)
	dev.regs.cfg.fft = newReg32(dev, rw, regs.CFG_FFT_OFF)
	dev.regs.cfg.offset = newReg32(dev, rw, regs.SUBSTRACT_MEAN_OFF)
	dev.regs.cfg.avg = newReg32(dev, rw, regs.AVG_OFF)
	dev.regs.cfg.addrLow = newReg32(dev, rw, regs.PEAK_ADDRESS_LOW_OFF)
	dev.regs.cfg.addrHigh = newReg32(dev, rw, regs.PEAK_ADDRESS_HIGH_OFF)
	dev.regs.cfg.addrReset = newReg32(dev, rw, regs.PEAK_ADDRESS_RESET_OFF)
}

func (dev *Device) bindStatus(rw rwer) {
	dev.regs.sts.id = newReg32(dev, rw, regs.ID_OFF)
	dev.regs.sts.dna = newReg32(dev, rw, regs.DNA_OFF)
	dev.regs.sts.nAvg = newReg32(dev, rw, regs.N_AVG_OFF)
	dev.regs.sts.peakAdr = newReg32(dev, rw, regs.PEAK_ADDRESS_OFF)
	dev.regs.sts.peakMax = newReg32(dev, rw, regs.PEAK_MAXIMUM_OFF)
}

func (dev *Device) bindPeakFIFO(rw rwer) {
	dev.regs.fifo = newAXIFIFO(dev, rw, 0)
}
