// renderer/bundle.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import "fmt"

// TextureSampler pairs a shader resource view with the sampler used to
// read it.
type TextureSampler struct {
	View    ShaderResourceView
	Sampler Sampler
}

// PipelineData holds the resources bound to a pipeline for a draw. The
// i'th entry of Textures is bound to the i'th sampler name in the
// pipeline's description.
type PipelineData struct {
	Vertex   Buffer
	Textures []TextureSampler
	Out      RenderTargetView
}

// Bundle holds everything needed to issue a single draw call: the
// geometry, the pipeline, and the resources bound to it.
type Bundle struct {
	Slice    Slice
	Pipeline Pipeline
	Data     PipelineData
}

// NewBundle checks that data matches what the pipeline expects and returns
// a Bundle.
func NewBundle(slice Slice, pso Pipeline, data PipelineData) (Bundle, error) {
	if n, ns := len(data.Textures), len(pso.Desc.Samplers); n != ns {
		return Bundle{}, fmt.Errorf("%d textures provided but pipeline %q has %d samplers", n, pso.Desc.Label, ns)
	}
	if data.Vertex.Info.Role != RoleVertex {
		return Bundle{}, fmt.Errorf("%s buffer bound as vertex buffer", data.Vertex.Info.Role)
	}
	if slice.IndexBuffer.Info.Role != RoleIndex {
		return Bundle{}, fmt.Errorf("%s buffer bound as index buffer", slice.IndexBuffer.Info.Role)
	}
	if slice.Start < 0 || slice.Count <= 0 || slice.Start+slice.Count > slice.IndexBuffer.Info.Size {
		return Bundle{}, fmt.Errorf("slice [%d,%d) outside index buffer of %d indices",
			slice.Start, slice.Start+slice.Count, slice.IndexBuffer.Info.Size)
	}
	if len(pso.Desc.Targets) == 0 {
		return Bundle{}, fmt.Errorf("pipeline %q has no targets", pso.Desc.Label)
	}

	return Bundle{Slice: slice, Pipeline: pso, Data: data}, nil
}

// Encode adds the commands to draw the bundle to the command buffer.
func (b *Bundle) Encode(cb *CommandBuffer) {
	cb.UsePipeline(b.Pipeline)
	t := b.Pipeline.Desc.Targets[0]
	cb.BindTarget(b.Data.Out, t.Mask, t.Blend)
	cb.BindVertexBuffer(b.Data.Vertex)
	for unit, ts := range b.Data.Textures {
		cb.BindTextureSampler(unit, ts.View, ts.Sampler)
	}
	cb.DrawIndexed(b.Slice)
}
