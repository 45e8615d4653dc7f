// frame/quad.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package frame

import (
	_ "embed"
	"slices"

	"github.com/texquad/texquad/renderer"
)

var (
	//go:embed shaders/shdr.vert
	vertexShader []byte
	//go:embed shaders/shdr.frag
	fragmentShader []byte
)

// The quad covers the entire viewport in normalized device coordinates.
var quadVertices = [4]renderer.Vertex{
	{Pos: [2]float32{-1, 1}},
	{Pos: [2]float32{-1, -1}},
	{Pos: [2]float32{1, -1}},
	{Pos: [2]float32{1, 1}},
}

var quadIndices = [6]uint16{0, 1, 2, 2, 3, 0}

// TexBufSize is the number of texels in the color buffer.
const TexBufSize = 1

// Names through which the host-side resources are bound to the shaders.
const (
	PositionAttribute = "a_Pos"
	ColorSampler      = "t_TexBuf"
	ColorTarget       = "Target0"
)

// QuadVertices returns the four corners of the quad.
func QuadVertices() []renderer.Vertex {
	return slices.Clone(quadVertices[:])
}

// QuadIndices returns the indices of the quad's two triangles.
func QuadIndices() []uint16 {
	return slices.Clone(quadIndices[:])
}

// PipelineDesc returns the description of the pipeline used to draw the
// quad.
func PipelineDesc() renderer.PipelineDesc {
	return renderer.PipelineDesc{
		Label:          "quad",
		VertexShader:   vertexShader,
		FragmentShader: fragmentShader,
		Attributes: []renderer.VertexAttribute{
			{Name: PositionAttribute, Components: 2, Offset: 0},
		},
		Stride:   renderer.VertexStride,
		Samplers: []string{ColorSampler},
		Targets: []renderer.BlendTarget{
			{Name: ColorTarget, Mask: renderer.ColorMaskAll, Blend: renderer.BlendAlpha},
		},
	}
}

func colorBufferInfo() renderer.BufferInfo {
	return renderer.BufferInfo{
		Role:   renderer.RoleConstant,
		Usage:  renderer.UsageDynamic,
		Bind:   renderer.BindShaderResource,
		Size:   TexBufSize,
		Stride: 16, // RGBA float32
	}
}
