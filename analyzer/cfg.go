// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"
	"io"
	"os"

	"github.com/go-daq/tdaq/log"
	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// Region identifies a memory-mapped window of the bitstream.
type Region int

const (
	RegionConfig Region = iota
	RegionStatus
	RegionSpectrum
	RegionDemod
	RegionNoiseFloor
	RegionPeakFIFO

	nRegions
)

func (r Region) String() string {
	switch r {
	case RegionConfig:
		return "config"
	case RegionStatus:
		return "status"
	case RegionSpectrum:
		return "spectrum"
	case RegionDemod:
		return "demod"
	case RegionNoiseFloor:
		return "noise-floor"
	case RegionPeakFIFO:
		return "peak-fifo"
	default:
		return fmt.Sprintf("Region(%d)", int(r))
	}
}

type window struct {
	base int64
	span int64
}

type config struct {
	mem  [nRegions]window
	fifo int     // peak FIFO depth, in words
	fs   float64 // ADC sampling rate, in Hz
	msg  log.MsgStream

	err error // first invalid option
}

func newConfig() config {
	return config{
		mem: [nRegions]window{
			RegionConfig:     {regs.CONFIG_ADDR, regs.CONFIG_RANGE},
			RegionStatus:     {regs.STATUS_ADDR, regs.STATUS_RANGE},
			RegionSpectrum:   {regs.SPECTRUM_ADDR, regs.SPECTRUM_RANGE},
			RegionDemod:      {regs.DEMOD_ADDR, regs.DEMOD_RANGE},
			RegionNoiseFloor: {regs.NOISE_FLOOR_ADDR, regs.NOISE_FLOOR_RANGE},
			RegionPeakFIFO:   {regs.PEAK_FIFO_ADDR, regs.PEAK_FIFO_RANGE},
		},
		fifo: regs.FIFO_BUFF_SIZE,
		fs:   regs.SAMPLING_RATE,
	}
}

func (cfg *config) validate() error {
	if cfg.err != nil {
		return cfg.err
	}
	for i, mem := range cfg.mem {
		if mem.base < 0 || mem.span <= 0 || mem.span%4 != 0 {
			return fmt.Errorf(
				"analyzer: invalid %v window (base=0x%x, span=0x%x): %w",
				Region(i), mem.base, mem.span, ErrInvalidArgument,
			)
		}
	}
	if cfg.fifo <= 0 {
		return fmt.Errorf("analyzer: invalid peak FIFO capacity %d: %w", cfg.fifo, ErrInvalidArgument)
	}
	if cfg.fs <= 0 {
		return fmt.Errorf("analyzer: invalid sampling rate %v: %w", cfg.fs, ErrInvalidArgument)
	}
	return nil
}

// Option configures a Device.
type Option func(*config)

// WithRegion relocates the named window to [base, base+span).
// The span of the spectrum window sets the number of spectrum bins.
func WithRegion(r Region, base, span int64) Option {
	return func(cfg *config) {
		if r < 0 || r >= nRegions {
			if cfg.err == nil {
				cfg.err = fmt.Errorf("analyzer: invalid region %v: %w", r, ErrInvalidArgument)
			}
			return
		}
		cfg.mem[r] = window{base: base, span: span}
	}
}

// WithFIFOCapacity sets the depth of the peak FIFO, in words.
// At most that many words are read per drain cycle.
// It must match the depth of the hardware FIFO: an occupancy above the
// capacity is accounted as lost peak events.
func WithFIFOCapacity(n int) Option {
	return func(cfg *config) {
		cfg.fifo = n
	}
}

// WithSamplingRate sets the ADC sampling rate, in Hz.
func WithSamplingRate(hz float64) Option {
	return func(cfg *config) {
		cfg.fs = hz
	}
}

// WithMsgStream sets the message stream used by the device.
func WithMsgStream(msg log.MsgStream) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithLogOutput directs device messages at or above lvl to w.
func WithLogOutput(w io.Writer, lvl log.Level) Option {
	return func(cfg *config) {
		cfg.msg = log.NewMsgStream("spectrum", lvl, w)
	}
}

func defaultMsgStream() log.MsgStream {
	return log.NewMsgStream("spectrum", log.LvlInfo, os.Stdout)
}
