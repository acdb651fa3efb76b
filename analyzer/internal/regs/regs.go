// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regs holds the memory map of the spectrum analyzer bitstream.
package regs // import "github.com/go-lpc/spectrum/analyzer/internal/regs"

// physical windows
const (
	CONFIG_ADDR  = 0x60000000
	CONFIG_RANGE = 0x1000

	STATUS_ADDR  = 0x50000000
	STATUS_RANGE = 0x1000

	SPECTRUM_ADDR  = 0x40000000
	SPECTRUM_RANGE = 0x4000

	DEMOD_ADDR  = 0x42000000
	DEMOD_RANGE = 0x4000

	NOISE_FLOOR_ADDR  = 0x44000000
	NOISE_FLOOR_RANGE = 0x4000

	PEAK_FIFO_ADDR  = 0x43C10000
	PEAK_FIFO_RANGE = 0x1000
)

// config window offsets
const (
	LED_OFF                = 0x00
	CFG_FFT_OFF            = 0x08
	SUBSTRACT_MEAN_OFF     = 0x0C
	AVG_OFF                = 0x10
	PEAK_ADDRESS_LOW_OFF   = 0x14
	PEAK_ADDRESS_HIGH_OFF  = 0x18
	PEAK_ADDRESS_RESET_OFF = 0x1C
)

// status window offsets
const (
	ID_OFF           = 0x00
	DNA_OFF          = 0x04
	N_AVG_OFF        = 0x10
	PEAK_ADDRESS_OFF = 0x14
	PEAK_MAXIMUM_OFF = 0x18
)

const (
	// AVG_OFF_BIT is set in AVG_OFF when accumulation is disabled.
	// Clearing it restarts the hardware accumulator from zero.
	AVG_OFF_BIT = 0

	// SHIFT_OFFSET_IMAG is the position of the imaginary part in SUBSTRACT_MEAN_OFF.
	SHIFT_OFFSET_IMAG = 14
)

// AXI4-Stream FIFO (pg080) receive-side registers, relative to PEAK_FIFO_ADDR.
const (
	PEAK_ISR_OFF  = 0x00
	PEAK_RDFR_OFF = 0x18 // receive data FIFO reset
	PEAK_RDFO_OFF = 0x1C // receive data FIFO occupancy
	PEAK_RDFD_OFF = 0x20 // receive data FIFO data read port
	PEAK_RLR_OFF  = 0x24 // receive length

	// RDFR_RESET_KEY resets the receive data FIFO when written to RDFR.
	RDFR_RESET_KEY = 0xA5

	// RDFO_MASK keeps the occupancy bits of RDFO, expressed in bytes.
	RDFO_MASK = 0x3FFFFF

	// ISR bits
	ISR_RPURE = 1 << 31 // receive packet underrun read error
	ISR_RPORE = 1 << 30 // receive packet overrun read error
	ISR_RPUE  = 1 << 29 // receive packet underrun error
	ISR_RC    = 1 << 26 // receive complete
	ISR_RFPF  = 1 << 20 // receive FIFO programmable full
	ISR_RFPE  = 1 << 19 // receive FIFO programmable empty
)

const (
	SAMPLING_RATE = 125e6 // Hz

	// FIFO_BUFF_SIZE is the depth of the peak FIFO, in 32-bit words.
	FIFO_BUFF_SIZE = 4096
)
