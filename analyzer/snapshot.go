// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"
)

// Spectrum reads the whole spectrum window.
//
// The returned slice is owned by the device and is overwritten by the next
// call to Spectrum or SpectrumDecim.
// Spectrum does not wait for the end of the current hardware frame.
func (dev *Device) Spectrum() ([]float32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.readSpectrum()
	if err != nil {
		return nil, err
	}
	return dev.spectrum.data, nil
}

func (dev *Device) readSpectrum() error {
	err := dev.check()
	if err != nil {
		return err
	}

	err = dev.mem.win[RegionSpectrum].ReadF32s(dev.spectrum.data, 0)
	if err != nil {
		return fmt.Errorf("analyzer: could not read spectrum: %w", err)
	}
	return nil
}

// SpectrumDecim reads the spectrum window and returns every factor-th bin
// of the [low, high] index range.
//
// The returned slice is owned by the device and is overwritten by the next
// call to SpectrumDecim.
func (dev *Device) SpectrumDecim(factor, low, high int) ([]float32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := checkDecim(factor, low, high, dev.wfm)
	if err != nil {
		return nil, err
	}

	err = dev.readSpectrum()
	if err != nil {
		return nil, err
	}

	dev.spectrum.decim, err = Decimate(dev.spectrum.decim[:0], dev.spectrum.data, factor, low, high)
	if err != nil {
		return nil, err
	}
	return dev.spectrum.decim, nil
}
