// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"

	"github.com/go-lpc/spectrum/internal/mmap"
)

func (dev *Device) mmapRegions() error {
	for i := range dev.mem.win {
		r := Region(i)
		w := dev.cfg.mem[r]
		h, err := mmap.Map(dev.mem.fd, w.base, w.span)
		if err != nil {
			return fmt.Errorf("analyzer: could not mmap %v window: %w", r, err)
		}
		dev.mem.win[r] = h
		dev.msg.Debugf("mapped %v window at 0x%08x (span=0x%x)", r, h.Base(), h.Len())
	}

	dev.bindConfig(dev.mem.win[RegionConfig])
	dev.bindStatus(dev.mem.win[RegionStatus])
	dev.bindPeakFIFO(dev.mem.win[RegionPeakFIFO])

	return nil
}

func (dev *Device) munmapRegions() error {
	var err error
	for i, h := range dev.mem.win {
		if h == nil {
			continue
		}
		e := h.Close()
		if e != nil && err == nil {
			err = fmt.Errorf("analyzer: could not munmap %v window: %w", Region(i), e)
		}
		dev.mem.win[i] = nil
	}
	return err
}

func (dev *Device) readU32(r rwer, off int64) uint32 {
	if dev.err != nil {
		return 0
	}
	v, err := r.ReadU32(off)
	if err != nil {
		dev.err = fmt.Errorf("analyzer: could not read register 0x%x: %w", off, err)
		return 0
	}
	return v
}

func (dev *Device) writeU32(w rwer, off int64, v uint32) {
	if dev.err != nil {
		return
	}
	err := w.WriteU32(off, v)
	if err != nil {
		dev.err = fmt.Errorf("analyzer: could not write register 0x%x: %w", off, err)
	}
}

// ioerr returns and clears the sticky register access error.
func (dev *Device) ioerr() error {
	err := dev.err
	dev.err = nil
	return err
}
