// renderer/rgb.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import "fmt"

///////////////////////////////////////////////////////////////////////////
// RGBA

type RGBA struct {
	R, G, B, A float32
}

var (
	Black = RGBA{R: 0, G: 0, B: 0, A: 1}
	Red   = RGBA{R: 1, G: 0, B: 0, A: 1}
)

// Array returns the color as the four floats that are stored in a texel.
func (c RGBA) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Validate returns an error if any component is outside [0,1].
func (c RGBA) Validate() error {
	for i, v := range c.Array() {
		if v < 0 || v > 1 || v != v {
			return fmt.Errorf("%s component %v outside [0,1]", "RGBA"[i:i+1], v)
		}
	}
	return nil
}
