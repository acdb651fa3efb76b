// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmap provides access to memory-mapped windows of a device file
// such as /dev/mem.
package mmap // import "github.com/go-lpc/spectrum/internal/mmap"

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

var (
	errClosed = errors.New("mmap: closed")
)

// Handle is a memory-mapped window.
type Handle struct {
	data []byte
	base int64
}

// Map maps span bytes of the file f, starting at the physical address base.
func Map(f *os.File, base, span int64) (*Handle, error) {
	if f == nil {
		return nil, os.ErrInvalid
	}
	if span <= 0 {
		return nil, fmt.Errorf("mmap: invalid span %d", span)
	}
	data, err := unix.Mmap(
		int(f.Fd()),
		base, int(span),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return nil, fmt.Errorf("mmap: could not map [0x%x, 0x%x): %w", base, base+span, err)
	}
	if data == nil || int64(len(data)) != span {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("mmap: invalid mmap'd data: %d", len(data))
	}
	h := HandleFrom(data)
	h.base = base
	return h, nil
}

// HandleFrom wraps an already mapped (or plain) byte slice.
func HandleFrom(data []byte) *Handle {
	h := &Handle{data: data}
	runtime.SetFinalizer(h, (*Handle).Close)
	return h
}

// Close unmaps the window.
func (h *Handle) Close() error {
	if h == nil {
		return os.ErrInvalid
	}

	if h.data == nil {
		return nil
	}
	data := h.data
	h.data = nil
	runtime.SetFinalizer(h, nil)

	return unix.Munmap(data)
}

// Base returns the physical address the window was mapped at.
func (h *Handle) Base() int64 { return h.base }

// Len returns the length of the window.
func (h *Handle) Len() int {
	return len(h.data)
}

func (h *Handle) word(off int64) ([]byte, error) {
	if h == nil {
		return nil, os.ErrInvalid
	}
	if h.data == nil {
		return nil, errClosed
	}
	if off < 0 || off%4 != 0 || int64(len(h.data)) < off+4 {
		return nil, fmt.Errorf("mmap: invalid word offset 0x%x", off)
	}
	return h.data[off : off+4], nil
}

// ReadU32 reads the 32-bit little-endian word at offset off.
func (h *Handle) ReadU32(off int64) (uint32, error) {
	p, err := h.word(off)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// WriteU32 writes v as a 32-bit little-endian word at offset off.
func (h *Handle) WriteU32(off int64, v uint32) error {
	p, err := h.word(off)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p, v)
	return nil
}

// ReadF32s fills dst with the consecutive float32 words starting at off.
func (h *Handle) ReadF32s(dst []float32, off int64) error {
	if h == nil {
		return os.ErrInvalid
	}
	if h.data == nil {
		return errClosed
	}
	end := off + 4*int64(len(dst))
	if off < 0 || off%4 != 0 || int64(len(h.data)) < end {
		return fmt.Errorf("mmap: invalid float range [0x%x, 0x%x)", off, end)
	}
	p := h.data[off:end]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
	}
	return nil
}

// WriteU32s writes the words of src consecutively, starting at off.
func (h *Handle) WriteU32s(off int64, src []uint32) error {
	if h == nil {
		return os.ErrInvalid
	}
	if h.data == nil {
		return errClosed
	}
	end := off + 4*int64(len(src))
	if off < 0 || off%4 != 0 || int64(len(h.data)) < end {
		return fmt.Errorf("mmap: invalid word range [0x%x, 0x%x)", off, end)
	}
	p := h.data[off:end]
	for i, v := range src {
		binary.LittleEndian.PutUint32(p[4*i:], v)
	}
	return nil
}

var _ io.Closer = (*Handle)(nil)
