// renderer/pipeline.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
)

// VertexAttribute binds a named shader input to float components of the
// vertex format.
type VertexAttribute struct {
	Name       string
	Components int
	Offset     int // bytes from the start of the vertex
}

// ColorMask selects which channels of a target are written.
type ColorMask uint8

const (
	ColorMaskRed ColorMask = 1 << iota
	ColorMaskGreen
	ColorMaskBlue
	ColorMaskAlpha

	ColorMaskAll = ColorMaskRed | ColorMaskGreen | ColorMaskBlue | ColorMaskAlpha
)

// BlendMode specifies how fragments are combined with the target.
type BlendMode int

const (
	BlendReplace BlendMode = iota
	// BlendAlpha is alpha-over blending: src alpha, 1-src alpha.
	BlendAlpha
)

// BlendTarget describes a named fragment shader output.
type BlendTarget struct {
	Name  string
	Mask  ColorMask
	Blend BlendMode
}

// PipelineDesc describes everything needed to build a Pipeline: the
// shader sources along with the names through which host-side buffers
// are connected to the shader stages.
type PipelineDesc struct {
	Label          string
	VertexShader   []byte
	FragmentShader []byte
	Attributes     []VertexAttribute
	Stride         int
	Samplers       []string
	Targets        []BlendTarget
}

// Validate checks the description for errors that can be detected without
// compiling the shaders.
func (d PipelineDesc) Validate() error {
	var errs []error
	if len(d.VertexShader) == 0 {
		errs = append(errs, errors.New("no vertex shader source"))
	}
	if len(d.FragmentShader) == 0 {
		errs = append(errs, errors.New("no fragment shader source"))
	}
	if len(d.Attributes) == 0 {
		errs = append(errs, errors.New("no vertex attributes"))
	}
	if d.Stride <= 0 {
		errs = append(errs, fmt.Errorf("%d: invalid vertex stride", d.Stride))
	}
	if len(d.Targets) != 1 {
		errs = append(errs, fmt.Errorf("%d targets: exactly one is supported", len(d.Targets)))
	}

	seen := make(map[string]bool)
	checkName := func(name string) {
		if name == "" {
			errs = append(errs, errors.New("empty shader variable name"))
		} else if seen[name] {
			errs = append(errs, fmt.Errorf("%s: shader variable name used multiple times", name))
		}
		seen[name] = true
	}
	for _, a := range d.Attributes {
		checkName(a.Name)
		if a.Components < 1 || a.Components > 4 {
			errs = append(errs, fmt.Errorf("%s: %d components: must be between 1 and 4", a.Name, a.Components))
		}
		if a.Offset < 0 || a.Offset+4*a.Components > d.Stride {
			errs = append(errs, fmt.Errorf("%s: attribute extends past vertex stride %d", a.Name, d.Stride))
		}
	}
	for _, s := range d.Samplers {
		checkName(s)
	}
	for _, t := range d.Targets {
		checkName(t.Name)
	}

	if err := errors.Join(errs...); err != nil {
		if d.Label != "" {
			return fmt.Errorf("%s: %w", d.Label, err)
		}
		return err
	}
	return nil
}

// Pipeline is a handle to a compiled shader program along with the
// description it was created from.
type Pipeline struct {
	ID   uint32
	Desc PipelineDesc
}
