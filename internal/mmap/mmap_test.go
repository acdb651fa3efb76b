// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmap

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestHandle(t *testing.T) {
	t.Run("nil-handle", func(t *testing.T) {
		var h *Handle

		_, err := h.ReadU32(0)
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid read-u32 error: %+v", err)
		}

		err = h.ReadF32s(make([]float32, 1), 0)
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid read-f32s error: %+v", err)
		}

		err = h.Close()
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid close error: %+v", err)
		}
	})
	t.Run("nil-data", func(t *testing.T) {
		var h Handle

		_, err := h.ReadU32(0)
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid read-u32 error: %+v", err)
		}

		err = h.WriteU32(0, 1)
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid write-u32 error: %+v", err)
		}

		err = h.WriteU32s(0, []uint32{1})
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid write-u32s error: %+v", err)
		}

		err = h.Close()
		if err != nil {
			t.Fatalf("error closing nil-data handle: %+v", err)
		}
	})
}

func TestHandleFrom(t *testing.T) {
	h := HandleFrom([]byte{0, 1, 2, 3})

	if got, want := h.Len(), 4; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}

	err := h.WriteU32(-4, 1)
	if got, want := err.Error(), "mmap: invalid word offset 0x-4"; got != want {
		t.Fatalf("invalid error: %+v", err)
	}

	v, err := h.ReadU32(0)
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	if got, want := v, uint32(0x03020100); got != want {
		t.Fatalf("invalid word: got=0x%x, want=0x%x", got, want)
	}

	for _, off := range []int64{-4, 1, 4} {
		_, err = h.ReadU32(off)
		if err == nil {
			t.Fatalf("expected an error for offset %d", off)
		}
	}
}

func TestWords(t *testing.T) {
	h := HandleFrom(make([]byte, 16))

	err := h.WriteU32s(4, []uint32{
		math.Float32bits(1.5),
		math.Float32bits(-2),
		math.Float32bits(42),
	})
	if err != nil {
		t.Fatalf("could not write words: %+v", err)
	}

	err = h.WriteU32s(8, make([]uint32, 3))
	if err == nil {
		t.Fatalf("expected an error writing past the window")
	}

	dst := make([]float32, 3)
	err = h.ReadF32s(dst, 4)
	if err != nil {
		t.Fatalf("could not read floats: %+v", err)
	}
	for i, want := range []float32{1.5, -2, 42} {
		if got := dst[i]; got != want {
			t.Fatalf("invalid float[%d]: got=%v, want=%v", i, got, want)
		}
	}

	err = h.ReadF32s(dst, 8)
	if err == nil {
		t.Fatalf("expected an error reading past the window")
	}

	err = h.WriteU32(12, 0xcafe)
	if err != nil {
		t.Fatalf("could not write word: %+v", err)
	}
	v, err := h.ReadU32(12)
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	if got, want := v, uint32(0xcafe); got != want {
		t.Fatalf("invalid word: got=0x%x, want=0x%x", got, want)
	}
}

func TestMap(t *testing.T) {
	tmp := t.TempDir()
	f, err := os.Create(filepath.Join(tmp, "dev.mem"))
	if err != nil {
		t.Fatalf("could not create fake dev-mem: %+v", err)
	}
	defer f.Close()

	const (
		base = 0x2000
		span = 0x1000
	)

	_, err = f.WriteAt([]byte{0xef, 0xbe, 0xad, 0xde}, base+8)
	if err != nil {
		t.Fatalf("could not write to dev-mem: %+v", err)
	}
	_, err = f.WriteAt([]byte{0}, base+span)
	if err != nil {
		t.Fatalf("could not write to dev-mem: %+v", err)
	}

	_, err = Map(nil, base, span)
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("invalid nil-file error: %+v", err)
	}

	_, err = Map(f, base, 0)
	if err == nil {
		t.Fatalf("expected an error for a null span")
	}

	h, err := Map(f, base, span)
	if err != nil {
		t.Fatalf("could not map dev-mem: %+v", err)
	}
	defer h.Close()

	if got, want := h.Base(), int64(base); got != want {
		t.Fatalf("invalid base: got=0x%x, want=0x%x", got, want)
	}
	if got, want := h.Len(), span; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}

	v, err := h.ReadU32(8)
	if err != nil {
		t.Fatalf("could not read word: %+v", err)
	}
	if got, want := v, uint32(0xdeadbeef); got != want {
		t.Fatalf("invalid word: got=0x%x, want=0x%x", got, want)
	}

	err = h.Close()
	if err != nil {
		t.Fatalf("could not unmap: %+v", err)
	}

	_, err = h.ReadU32(8)
	if !errors.Is(err, errClosed) {
		t.Fatalf("invalid read-after-close error: %+v", err)
	}
}
