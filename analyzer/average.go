// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"

	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// SetAveraging enables or disables the in-place accumulation of spectrum
// frames by the hardware.
// Disabling then enabling averaging restarts the accumulation.
func (dev *Device) SetAveraging(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	dev.writeAveraging(on)
	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not set averaging=%v: %w", on, err)
	}
	return nil
}

func (dev *Device) writeAveraging(on bool) {
	ctrl := dev.regs.cfg.avg.r()
	switch {
	case on:
		ctrl &= ^uint32(1 << regs.AVG_OFF_BIT)
	default:
		ctrl |= 1 << regs.AVG_OFF_BIT
	}
	dev.regs.cfg.avg.w(ctrl)
	if dev.err == nil {
		dev.avg = on
	}
}

// Averaging reports whether averaging was last enabled.
func (dev *Device) Averaging() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.avg
}

// NumAverages returns the number of frames accumulated by the hardware.
func (dev *Device) NumAverages() (uint32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return 0, err
	}

	n := dev.regs.sts.nAvg.r()
	err = dev.ioerr()
	if err != nil {
		return 0, fmt.Errorf("analyzer: could not read number of averages: %w", err)
	}
	return n, nil
}
