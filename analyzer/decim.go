// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"fmt"
)

// Decimate appends to dst every factor-th sample of src[low:high+1],
// starting at src[low], and returns the extended slice.
//
// The result holds (high-low)/factor+1 samples.
// Decimate returns an error wrapping ErrInvalidArgument unless
// factor >= 1 and 0 <= low <= high < len(src).
func Decimate(dst, src []float32, factor, low, high int) ([]float32, error) {
	err := checkDecim(factor, low, high, len(src))
	if err != nil {
		return dst, err
	}

	for i := low; i <= high; i += factor {
		dst = append(dst, src[i])
	}
	return dst, nil
}

// DecimLen returns the number of samples produced by Decimate.
func DecimLen(factor, low, high int) int {
	if factor < 1 || low < 0 || high < low {
		return 0
	}
	return (high-low)/factor + 1
}

func checkDecim(factor, low, high, n int) error {
	switch {
	case factor < 1:
		return fmt.Errorf("analyzer: invalid decimation factor %d: %w", factor, ErrInvalidArgument)
	case low < 0 || high < low || high >= n:
		return fmt.Errorf(
			"analyzer: invalid decimation range [%d, %d] (bins=%d): %w",
			low, high, n, ErrInvalidArgument,
		)
	}
	return nil
}
