// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analyzer drives the spectrum analyzer FPGA peripheral.
//
// The FPGA computes a spectrum continuously and exposes it through a
// memory-mapped window, optionally accumulating (averaging) successive
// frames in place. A peak detector pushes one 32-bit word per detected peak
// into an AXI4-Stream FIFO, which the driver drains periodically into a
// host-side peak log.
//
// A Device owns every mapped window and must be opened before use.
// All register accesses, including the ones performed by the peak
// acquisition goroutine, are serialized by the Device.
package analyzer // import "github.com/go-lpc/spectrum/analyzer"

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a device that was not opened
	// or was closed.
	ErrClosed = errors.New("analyzer: device closed")

	// ErrFailed is returned by operations on a device whose last Open failed.
	ErrFailed = errors.New("analyzer: device failed to open")

	// ErrRunning is returned when starting an acquisition already running.
	ErrRunning = errors.New("analyzer: peak acquisition already running")

	// ErrInvalidArgument reports a precondition violation by the caller.
	ErrInvalidArgument = errors.New("analyzer: invalid argument")
)

// Status is the lifecycle status of a Device.
type Status uint8

const (
	StatusClosed Status = iota
	StatusOpened
	StatusFailed
)

func (st Status) String() string {
	switch st {
	case StatusClosed:
		return "closed"
	case StatusOpened:
		return "opened"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(st))
	}
}

// PeakRecord is one word popped from the peak FIFO.
// Its layout is defined by the bitstream.
type PeakRecord uint32

// AddressRange bounds the spectrum bins whose peaks are pushed into the
// peak FIFO by the hardware.
type AddressRange struct {
	Low  uint32
	High uint32
}

// Stats holds the peak acquisition counters since the last Start.
type Stats struct {
	Drains    uint64 // number of drain cycles
	Records   uint64 // number of peak records appended to the log
	Overflows uint64 // drain cycles that saw an occupancy above capacity
	Lost      uint64 // occupancy above capacity; matches hardware loss only if the capacity is the FIFO depth
	MaxFill   uint32 // highest occupancy observed, in words
}
