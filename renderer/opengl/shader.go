// renderer/opengl/shader.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package opengl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/texquad/texquad/renderer"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// program records what CreatePipeline resolved for a linked program: the
// locations of each attribute and sampler in the same order as in the
// description.
type program struct {
	id       uint32
	desc     renderer.PipelineDesc
	attribs  []uint32
	samplers []int32
}

func stageName(stage uint32) string {
	if stage == gl.VERTEX_SHADER {
		return "vertex"
	}
	return "fragment"
}

// shader returns a compiled shader object for the given source, reusing a
// previously compiled one if the same source has been seen recently.
func (d *Device) shader(stage uint32, src []byte) (uint32, error) {
	sum := sha256.Sum256(src)
	key := stageName(stage) + ":" + hex.EncodeToString(sum[:])
	if id, ok := d.shaders.Get(key); ok {
		return id, nil
	}

	id, err := compileShader(stage, string(src))
	if err != nil {
		return 0, err
	}
	d.shaders.Add(key, id)
	d.lg.Debugf("compiled %s shader %d (%d bytes)", stageName(stage), id, len(src))
	return id, nil
}

func compileShader(stage uint32, source string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile %s shader: %s", stageName(stage),
			strings.TrimRight(infoLog, "\x00\n"))
	}
	return shader, nil
}

func linkProgram(vs, fs uint32, target string) (uint32, error) {
	p := gl.CreateProgram()
	gl.AttachShader(p, vs)
	gl.AttachShader(p, fs)
	gl.BindFragDataLocation(p, 0, gl.Str(target+"\x00"))
	gl.LinkProgram(p)

	// The shaders stay alive in the cache; the program no longer needs
	// them once it has been linked.
	gl.DetachShader(p, vs)
	gl.DetachShader(p, fs)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(p)

		return 0, fmt.Errorf("failed to link program: %s", strings.TrimRight(infoLog, "\x00\n"))
	}
	return p, nil
}

// resolve looks up every name in the description in the linked program.
func resolve(id uint32, desc renderer.PipelineDesc) (*program, error) {
	p := &program{id: id, desc: desc}

	for _, a := range desc.Attributes {
		loc := gl.GetAttribLocation(id, gl.Str(a.Name+"\x00"))
		if loc < 0 {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, renderer.ErrMissingShaderInput)
		}
		p.attribs = append(p.attribs, uint32(loc))
	}
	for _, s := range desc.Samplers {
		loc := gl.GetUniformLocation(id, gl.Str(s+"\x00"))
		if loc < 0 {
			return nil, fmt.Errorf("sampler %q: %w", s, renderer.ErrMissingShaderInput)
		}
		p.samplers = append(p.samplers, loc)
	}
	for _, t := range desc.Targets {
		if gl.GetFragDataLocation(id, gl.Str(t.Name+"\x00")) < 0 {
			return nil, fmt.Errorf("target %q: %w", t.Name, renderer.ErrMissingShaderInput)
		}
	}
	return p, nil
}
