// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-daq/tdaq/log"
	"github.com/go-lpc/spectrum/analyzer/internal/regs"
)

// layout of the fake dev-mem: every window is moved to a small
// page-aligned offset so the backing file stays small.
const (
	tstCfgBase   = 0x0000
	tstStsBase   = 0x1000
	tstSpecBase  = 0x2000
	tstDemodBase = 0x3000
	tstNoiseBase = 0x4000
	tstFIFOBase  = 0x5000
	tstMemSize   = 0x6000

	tstBins = 64
)

func tstOptions() []Option {
	return []Option{
		WithRegion(RegionConfig, tstCfgBase, 0x1000),
		WithRegion(RegionStatus, tstStsBase, 0x1000),
		WithRegion(RegionSpectrum, tstSpecBase, 4*tstBins),
		WithRegion(RegionDemod, tstDemodBase, 4*tstBins),
		WithRegion(RegionNoiseFloor, tstNoiseBase, 4*tstBins),
		WithRegion(RegionPeakFIFO, tstFIFOBase, 0x1000),
		WithLogOutput(io.Discard, log.LvlInfo),
	}
}

// newFakeDevMem creates a zero-filled fake dev-mem file.
func newFakeDevMem(t *testing.T) string {
	t.Helper()

	fname := filepath.Join(t.TempDir(), "dev.mem")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create fake dev-mem: %+v", err)
	}
	defer f.Close()

	err = f.Truncate(tstMemSize)
	if err != nil {
		t.Fatalf("could not resize fake dev-mem: %+v", err)
	}

	err = f.Close()
	if err != nil {
		t.Fatalf("could not close fake dev-mem: %+v", err)
	}
	return fname
}

// newTestDevice creates and opens a device backed by a fake dev-mem.
func newTestDevice(t *testing.T, opts ...Option) (*Device, string) {
	t.Helper()

	devmem := newFakeDevMem(t)
	dev, err := NewDevice(devmem, append(tstOptions(), opts...)...)
	if err != nil {
		t.Fatalf("could not create fake device: %+v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })

	err = dev.Open()
	if err != nil {
		t.Fatalf("could not open fake device: %+v", err)
	}
	return dev, devmem
}

func peekU32(t *testing.T, devmem string, off int64) uint32 {
	t.Helper()

	f, err := os.Open(devmem)
	if err != nil {
		t.Fatalf("could not open fake dev-mem: %+v", err)
	}
	defer f.Close()

	var buf [4]byte
	_, err = f.ReadAt(buf[:], off)
	if err != nil {
		t.Fatalf("could not read fake dev-mem at 0x%x: %+v", off, err)
	}
	return binary.LittleEndian.Uint32(buf[:])
}

func pokeU32(t *testing.T, devmem string, off int64, vs ...uint32) {
	t.Helper()

	f, err := os.OpenFile(devmem, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("could not open fake dev-mem: %+v", err)
	}
	defer f.Close()

	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	_, err = f.WriteAt(buf, off)
	if err != nil {
		t.Fatalf("could not write fake dev-mem at 0x%x: %+v", off, err)
	}

	err = f.Close()
	if err != nil {
		t.Fatalf("could not close fake dev-mem: %+v", err)
	}
}

func pokeF32(t *testing.T, devmem string, off int64, vs ...float32) {
	t.Helper()

	ws := make([]uint32, len(vs))
	for i, v := range vs {
		ws[i] = math.Float32bits(v)
	}
	pokeU32(t, devmem, off, ws...)
}

// fakeFIFO scripts the receive side of the peak FIFO.
// Occupancy is reported in bytes, as the hardware does.
type fakeFIFO struct {
	mu    sync.Mutex
	words []uint32
	extra uint32 // occupancy reported on top of the queued words
	reads int    // number of occupancy reads
	hook  func() // called on each occupancy read, with dev.mu held

	pops    int       // number of data reads
	popHook func(int) // called on each data read with its index, with dev.mu held
}

func wrapFIFO(dev *Device) *fakeFIFO {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	var (
		ff   = &fakeFIFO{}
		fifo = &dev.regs.fifo
	)

	fifo.rdfo.r = func() uint32 {
		ff.mu.Lock()
		defer ff.mu.Unlock()
		ff.reads++
		if ff.hook != nil {
			ff.hook()
		}
		return (uint32(len(ff.words)) + ff.extra) << 2
	}
	fifo.rdfd.r = func() uint32 {
		ff.mu.Lock()
		defer ff.mu.Unlock()
		if len(ff.words) == 0 {
			panic("exhaust: fifo.rdfd")
		}
		if ff.popHook != nil {
			ff.popHook(ff.pops)
		}
		ff.pops++
		v := ff.words[0]
		ff.words = ff.words[1:]
		return v
	}
	w := fifo.rdfr.w
	fifo.rdfr.w = func(v uint32) {
		ff.mu.Lock()
		defer ff.mu.Unlock()
		if v == regs.RDFR_RESET_KEY {
			ff.words = nil
			ff.extra = 0
		}
		w(v)
	}

	return ff
}

func (ff *fakeFIFO) push(vs ...uint32) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	ff.words = append(ff.words, vs...)
}

func (ff *fakeFIFO) len() int {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return len(ff.words)
}

// wrapAverager emulates the frame accumulator: every read of the number
// of averages sees one more frame, and disabling averaging clears it.
func wrapAverager(dev *Device) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	var (
		n   uint32
		on  = dev.avg
		avg = &dev.regs.cfg.avg
		w   = avg.w
	)

	avg.w = func(v uint32) {
		on = v&(1<<regs.AVG_OFF_BIT) == 0
		if !on {
			n = 0
		}
		w(v)
	}
	dev.regs.sts.nAvg.r = func() uint32 {
		v := n
		if on {
			n++
		}
		return v
	}
}
