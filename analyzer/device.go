// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-daq/tdaq/log"
	"github.com/go-lpc/spectrum/internal/mmap"
)

// Device represents a spectrum analyzer peripheral.
type Device struct {
	msg    log.MsgStream
	devmem string
	cfg    config
	wfm    int // number of spectrum bins

	mu     sync.Mutex
	status Status
	err    error

	mem struct {
		fd  *os.File
		win [nRegions]*mmap.Handle
	}
	regs pins

	avg bool
	rng AddressRange

	spectrum struct {
		data  []float32
		decim []float32
	}

	peak peakFIFO
}

// NewDevice creates a closed spectrum analyzer device, backed by the
// devmem file (usually /dev/mem).
// The number of spectrum bins is derived from the spectrum window span
// and does not change for the lifetime of the device.
func NewDevice(devmem string, opts ...Option) (*Device, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	err := cfg.validate()
	if err != nil {
		return nil, err
	}
	if cfg.msg == nil {
		cfg.msg = defaultMsgStream()
	}

	dev := &Device{
		msg:    cfg.msg,
		devmem: devmem,
		cfg:    cfg,
		wfm:    int(cfg.mem[RegionSpectrum].span / 4),
	}
	dev.spectrum.data = make([]float32, dev.wfm)
	dev.spectrum.decim = make([]float32, 0, dev.wfm)
	dev.peak.buf = make([]uint32, cfg.fifo)

	return dev, nil
}

// Open maps every window of the peripheral.
// On failure, the device is left in the failed status and all operations
// are rejected until a subsequent Open succeeds.
// Opening an opened device is a no-op.
func (dev *Device) Open() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.status == StatusOpened {
		return nil
	}

	err := dev.open()
	if err != nil {
		dev.status = StatusFailed
		dev.msg.Errorf("could not open %q: %+v", dev.devmem, err)
		return err
	}

	dev.status = StatusOpened
	dev.msg.Infof("opened %q (bins=%d, fifo=%d)", dev.devmem, dev.wfm, len(dev.peak.buf))
	return nil
}

func (dev *Device) open() error {
	mem, err := os.OpenFile(dev.devmem, os.O_RDWR|os.O_SYNC, 0666)
	if err != nil {
		return fmt.Errorf("analyzer: could not open %q: %w", dev.devmem, err)
	}
	dev.mem.fd = mem
	defer func() {
		if err != nil {
			_ = dev.munmapRegions()
			_ = mem.Close()
			dev.mem.fd = nil
		}
	}()

	err = dev.mmapRegions()
	if err != nil {
		return err
	}

	dev.err = nil
	dev.rng = AddressRange{Low: 0, High: uint32(dev.wfm - 1)}

	// restart accumulation from a clean state.
	dev.writeAveraging(false)
	dev.writeAveraging(true)
	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not reset averaging: %w", err)
	}

	return nil
}

// Close stops any running peak acquisition and releases the mapped windows.
func (dev *Device) Close() error {
	errStop := dev.Stop()

	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.mem.fd == nil {
		dev.status = StatusClosed
		return nil
	}

	var (
		errMap = dev.munmapRegions()
		errMem = dev.mem.fd.Close()
	)
	dev.mem.fd = nil
	dev.status = StatusClosed

	if errMem != nil {
		return fmt.Errorf("analyzer: could not close device mem file: %w", errMem)
	}

	if errMap != nil {
		return errMap
	}

	return errStop
}

// Status returns the lifecycle status of the device.
func (dev *Device) Status() Status {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.status
}

// Size returns the number of bins of a spectrum snapshot.
func (dev *Device) Size() int { return dev.wfm }

// AcqTime returns the duration of the acquisition of one spectrum frame.
func (dev *Device) AcqTime() time.Duration {
	return time.Duration(2 * float64(dev.wfm) / dev.cfg.fs * float64(time.Second))
}

// Frequency returns the frequency, in Hz, of the i-th spectrum bin.
func (dev *Device) Frequency(i int) float64 {
	return float64(i) * dev.cfg.fs / float64(2*dev.wfm)
}

// check reports whether registers may be accessed.
// It must be called with dev.mu held.
func (dev *Device) check() error {
	switch dev.status {
	case StatusOpened:
		return nil
	case StatusFailed:
		return ErrFailed
	default:
		return ErrClosed
	}
}
