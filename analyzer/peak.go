// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"
	"time"
)

// peakFIFO holds the state of the peak acquisition.
type peakFIFO struct {
	buf   []uint32 // drain scratch, sized to the FIFO capacity
	log   []PeakRecord
	stats Stats

	quit chan struct{} // closed to stop the polling goroutine
	done chan struct{} // closed by the polling goroutine on exit
	err  error         // first error seen by the polling goroutine
}

// SetAddressRange restricts the peak detector to the [low, high] bins.
//
// The range may be changed while the acquisition is running: it is written
// to the hardware before the next drain cycle and gates the peaks detected
// from then on. Peaks already queued in the FIFO are kept.
func (dev *Device) SetAddressRange(low, high uint32) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	if low > high || high >= uint32(dev.wfm) {
		return fmt.Errorf(
			"analyzer: invalid peak address range [%d, %d] (bins=%d): %w",
			low, high, dev.wfm, ErrInvalidArgument,
		)
	}

	wfm := uint32(dev.wfm)
	dev.regs.cfg.addrLow.w(low)
	dev.regs.cfg.addrHigh.w(high)
	dev.regs.cfg.addrReset.w((low + wfm - 1) % wfm)

	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not set peak address range: %w", err)
	}
	dev.rng = AddressRange{Low: low, High: high}
	return nil
}

// AddressRange returns the last peak address range written to the hardware.
func (dev *Device) AddressRange() AddressRange {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.rng
}

// Start launches the peak acquisition: the peak FIFO is drained right away
// and then every period, until Stop is called.
// The period is a sleep between two drain cycles: it must be short enough
// for the FIFO not to fill up between two cycles.
//
// Start clears the peak log and the acquisition counters.
func (dev *Device) Start(period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("analyzer: invalid acquisition period %v: %w", period, ErrInvalidArgument)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	if dev.peak.done != nil {
		return ErrRunning
	}

	dev.peak.log = nil
	dev.peak.stats = Stats{}
	dev.peak.err = nil
	dev.peak.quit = make(chan struct{})
	dev.peak.done = make(chan struct{})

	go dev.loop(period, dev.peak.quit, dev.peak.done)

	dev.msg.Infof("peak acquisition started (period=%v)", period)
	return nil
}

func (dev *Device) loop(period time.Duration, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			return
		default:
		}

		dev.mu.Lock()
		_, err := dev.drain()
		if err != nil {
			if dev.peak.err == nil {
				dev.peak.err = err
			}
			dev.msg.Errorf("%+v", err)
		}
		dev.mu.Unlock()

		timer := time.NewTimer(period)
		select {
		case <-quit:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Stop stops the peak acquisition.
// When Stop returns, the polling goroutine has exited and no drain cycle
// is in progress.
// Stop returns the first error encountered while draining, if any.
// Stopping a stopped acquisition is a no-op.
func (dev *Device) Stop() error {
	dev.mu.Lock()
	quit, done := dev.peak.quit, dev.peak.done
	dev.peak.quit = nil
	dev.mu.Unlock()

	if done == nil {
		return nil
	}

	if quit != nil {
		close(quit)
	}
	<-done

	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.peak.done == done {
		dev.peak.done = nil
		dev.msg.Infof(
			"peak acquisition stopped (drains=%d, records=%d, lost=%d)",
			dev.peak.stats.Drains, dev.peak.stats.Records, dev.peak.stats.Lost,
		)
	}

	if dev.peak.err != nil {
		return fmt.Errorf("analyzer: error during peak acquisition: %w", dev.peak.err)
	}
	return nil
}

// Acquiring reports whether the peak acquisition is running.
// An acquisition being stopped is still running until its polling
// goroutine has exited: Start reports ErrRunning during that time.
func (dev *Device) Acquiring() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.peak.done != nil
}

// FIFOLength returns the number of words currently held by the peak FIFO.
func (dev *Device) FIFOLength() (uint32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return 0, err
	}

	n := dev.regs.fifo.occupancy()
	err = dev.ioerr()
	if err != nil {
		return 0, fmt.Errorf("analyzer: could not read peak FIFO occupancy: %w", err)
	}
	return n, nil
}

// DrainOnce performs one drain cycle and returns the number of peak records
// appended to the peak log.
// On a register error, the records read before the error are still
// appended and counted.
// It is the operation performed periodically by a running acquisition and
// may be used to drive the acquisition manually.
func (dev *Device) DrainOnce() (uint32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	return dev.drain()
}

// drain must be called with dev.mu held.
func (dev *Device) drain() (uint32, error) {
	err := dev.check()
	if err != nil {
		return 0, err
	}

	var (
		buf    = dev.peak.buf
		n, occ = dev.regs.fifo.drain(buf)
		stats  = &dev.peak.stats
	)

	// words popped before a register error are kept.
	for _, v := range buf[:n] {
		dev.peak.log = append(dev.peak.log, PeakRecord(v))
	}
	stats.Records += uint64(n)

	err = dev.ioerr()
	if err != nil {
		return uint32(n), fmt.Errorf(
			"analyzer: could not drain peak FIFO (records=%d): %w", n, err,
		)
	}

	if occ > stats.MaxFill {
		stats.MaxFill = occ
	}
	if capacity := uint32(len(buf)); occ > capacity {
		lost := occ - capacity
		stats.Overflows++
		stats.Lost += uint64(lost)
		dev.msg.Warnf(
			"peak FIFO occupancy %d exceeds capacity %d: %d peak events lost",
			occ, capacity, lost,
		)
	}
	stats.Drains++

	return uint32(n), nil
}

// PeakLog returns a copy of the peak records accumulated since Start
// (or since the last TakePeakLog), in FIFO order.
// While the acquisition is running, successive calls observe a growing log.
func (dev *Device) PeakLog() []PeakRecord {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if len(dev.peak.log) == 0 {
		return nil
	}
	out := make([]PeakRecord, len(dev.peak.log))
	copy(out, dev.peak.log)
	return out
}

// TakePeakLog returns the accumulated peak records and clears the log,
// atomically with respect to the drain cycles.
func (dev *Device) TakePeakLog() []PeakRecord {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	out := dev.peak.log
	dev.peak.log = nil
	return out
}

// Stats returns the peak acquisition counters.
func (dev *Device) Stats() Stats {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.peak.stats
}

// ResetPeakFIFO discards the content of the peak FIFO.
func (dev *Device) ResetPeakFIFO() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	err := dev.check()
	if err != nil {
		return err
	}

	dev.regs.fifo.reset()
	err = dev.ioerr()
	if err != nil {
		return fmt.Errorf("analyzer: could not reset peak FIFO: %w", err)
	}
	return nil
}
