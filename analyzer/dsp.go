// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"

	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// SetScaleSch sets the scaling schedule of the FFT core.
func (dev *Device) SetScaleSch(sch uint32) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	// bit 0: forward transform.
	dev.regs.cfg.fft.w(1 + 2*sch)
	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not set FFT scaling schedule: %w", err)
	}
	return nil
}

// SetOffset sets the offsets subtracted from the real and imaginary
// parts of the input signal.
func (dev *Device) SetOffset(re, im uint32) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	dev.regs.cfg.offset.w(re + im<<regs.SHIFT_OFFSET_IMAG)
	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not set offsets: %w", err)
	}
	return nil
}

// SetDemodBuffer loads the demodulation window, one packed word per bin.
func (dev *Device) SetDemodBuffer(data []uint32) error {
	return dev.writeBuffer(RegionDemod, data)
}

// SetNoiseFloorBuffer loads the noise floor, one word per bin,
// subtracted from the spectrum before peak detection.
func (dev *Device) SetNoiseFloorBuffer(data []uint32) error {
	return dev.writeBuffer(RegionNoiseFloor, data)
}

func (dev *Device) writeBuffer(r Region, data []uint32) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	if len(data) > dev.wfm {
		return fmt.Errorf(
			"analyzer: %v buffer too large (len=%d, bins=%d): %w",
			r, len(data), dev.wfm, ErrInvalidArgument,
		)
	}

	err = dev.mem.win[r].WriteU32s(0, data)
	if err != nil {
		return fmt.Errorf("analyzer: could not write %v buffer: %w", r, err)
	}
	return nil
}

// PeakAddress returns the bin of the last peak found by the detector.
func (dev *Device) PeakAddress() (uint32, error) {
	return dev.status32(&dev.regs.sts.peakAdr, "peak address")
}

// PeakMaximum returns the magnitude of the last peak found by the detector.
func (dev *Device) PeakMaximum() (uint32, error) {
	return dev.status32(&dev.regs.sts.peakMax, "peak maximum")
}

func (dev *Device) status32(reg *reg32, name string) (uint32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return 0, err
	}

	v := reg.r()
	err = dev.ioerr()
	if err != nil {
		return 0, fmt.Errorf("analyzer: could not read %s: %w", name, err)
	}
	return v, nil
}
