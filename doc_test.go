// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spectrum

import (
	"runtime/debug"
	"testing"
)

func TestVersionOf(t *testing.T) {
	const root = "github.com/go-lpc/spectrum"

	for _, tc := range []struct {
		name    string
		bi      *debug.BuildInfo
		version string
		sum     string
	}{
		{
			name: "nil",
		},
		{
			name: "no-dep",
			bi:   &debug.BuildInfo{},
		},
		{
			name: "dep",
			bi: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: "golang.org/x/sys", Version: "v0.7.0"},
				{Path: root, Version: "v0.1.0", Sum: "h1:xxx"},
			}},
			version: "v0.1.0",
			sum:     "h1:xxx",
		},
		{
			name: "replace-version",
			bi: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: root, Version: "v0.1.0", Replace: &debug.Module{Version: "v0.2.0", Sum: "h1:yyy"}},
			}},
			version: "v0.2.0",
			sum:     "h1:yyy",
		},
		{
			name: "replace-path",
			bi: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: root, Version: "v0.1.0", Replace: &debug.Module{Path: "../spectrum"}},
			}},
			version: "../spectrum",
		},
		{
			name: "replace-path-version",
			bi: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: root, Version: "v0.1.0", Replace: &debug.Module{Path: "example.org/spectrum", Version: "v0.3.0"}},
			}},
			version: "example.org/spectrum v0.3.0",
		},
		{
			name: "replace-empty",
			bi: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: root, Version: "v0.1.0", Replace: &debug.Module{}},
			}},
			version: "v0.1.0*",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			version, sum := versionOf(tc.bi)
			if version != tc.version {
				t.Fatalf("invalid version: got=%q, want=%q", version, tc.version)
			}
			if sum != tc.sum {
				t.Fatalf("invalid sum: got=%q, want=%q", sum, tc.sum)
			}
		})
	}

	// test binaries are built with module support.
	_, _ = Version()
}
