// frame/fakes_test.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package frame

import (
	"errors"
	"slices"

	"github.com/texquad/texquad/platform"
	"github.com/texquad/texquad/renderer"
)

// fakePlatform delivers script[i] from the i'th call to PollEvents.
type fakePlatform struct {
	script         [][]platform.Event
	polls, swaps   int
	closeRequested bool
	disposed       bool
}

func (p *fakePlatform) PollEvents(fn func(platform.Event)) {
	if p.polls < len(p.script) {
		for _, e := range p.script[p.polls] {
			fn(e)
		}
	}
	if p.closeRequested {
		p.closeRequested = false
		fn(platform.Event{Type: platform.EventWindowClosed})
	}
	p.polls++
}

func (p *fakePlatform) PostRender() { p.swaps++ }
func (p *fakePlatform) RequestClose() { p.closeRequested = true }
func (p *fakePlatform) EnableVSync(bool) {}
func (p *fakePlatform) FramebufferSize() [2]int { return [2]int{640, 480} }
func (p *fakePlatform) Dispose() { p.disposed = true }

var errInjected = errors.New("injected failure")

// fakeDevice is a renderer.Device that keeps the contents of the buffers
// it creates in memory and applies buffer updates when command buffers
// are rendered.
type fakeDevice struct {
	failOn string

	nextID    uint32
	pipelines []renderer.PipelineDesc
	vertices  []renderer.Vertex
	indices   []uint16
	contents  map[uint32][]float32
	flushed   []*renderer.CommandBuffer
	cleanups  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{contents: make(map[uint32][]float32)}
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CreatePipeline(desc renderer.PipelineDesc) (renderer.Pipeline, error) {
	if d.failOn == "pipeline" {
		return renderer.Pipeline{}, errInjected
	}
	if err := desc.Validate(); err != nil {
		return renderer.Pipeline{}, err
	}
	d.pipelines = append(d.pipelines, desc)
	return renderer.Pipeline{ID: d.id(), Desc: desc}, nil
}

func (d *fakeDevice) CreateVertexBufferWithSlice(vertices []renderer.Vertex, indices []uint16) (renderer.Buffer, renderer.Slice, error) {
	if d.failOn == "vertex" {
		return renderer.Buffer{}, renderer.Slice{}, errInjected
	}
	d.vertices = slices.Clone(vertices)
	d.indices = slices.Clone(indices)

	vb := renderer.Buffer{ID: d.id(), Info: renderer.BufferInfo{Role: renderer.RoleVertex, Size: len(vertices), Stride: renderer.VertexStride}}
	ib := renderer.Buffer{ID: d.id(), Info: renderer.BufferInfo{Role: renderer.RoleIndex, Size: len(indices), Stride: 2}}
	return vb, renderer.Slice{IndexBuffer: ib, Count: len(indices)}, nil
}

func (d *fakeDevice) CreateBuffer(info renderer.BufferInfo) (renderer.Buffer, error) {
	if d.failOn == "buffer" {
		return renderer.Buffer{}, errInjected
	}
	b := renderer.Buffer{ID: d.id(), Info: info}
	d.contents[b.ID] = make([]float32, info.Bytes()/4)
	return b, nil
}

func (d *fakeDevice) ViewBufferAsShaderResource(b renderer.Buffer) (renderer.ShaderResourceView, error) {
	if d.failOn == "view" {
		return renderer.ShaderResourceView{}, errInjected
	}
	if b.Info.Bind&renderer.BindShaderResource == 0 {
		return renderer.ShaderResourceView{}, renderer.ErrNotShaderResource
	}
	return renderer.ShaderResourceView{ID: d.id(), Buffer: b}, nil
}

func (d *fakeDevice) CreateSampler(info renderer.SamplerInfo) renderer.Sampler {
	return renderer.Sampler{ID: d.id(), Info: info}
}

func (d *fakeDevice) RenderCommandBuffer(cb *renderer.CommandBuffer) renderer.RendererStats {
	var stats renderer.RendererStats
	stats.CountBuffer(4 * len(cb.Buf))
	d.flushed = append(d.flushed, cb.Clone())

	err := cb.Walk(func(cmd uint32, args []uint32) {
		switch cmd {
		case renderer.RendererClearRGBA:
			stats.CountClear()
		case renderer.RendererUpdateBuffer:
			id, offset, n := args[0], int(args[2])/4, int(args[3])
			for i, v := range args[4 : 4+n] {
				d.contents[id][offset+i] = renderer.Float(v)
			}
			stats.CountUpdate(4 * n)
		case renderer.RendererDrawIndexed:
			stats.CountDraw(int(args[2]) / 3)
		}
	})
	if err != nil {
		panic(err)
	}
	return stats
}

func (d *fakeDevice) Cleanup() { d.cleanups++ }
func (d *fakeDevice) Dispose() {}

// texel returns the contents of the single dynamic buffer the device has
// created.
func (d *fakeDevice) texel() []float32 {
	for _, c := range d.contents {
		return c
	}
	return nil
}
