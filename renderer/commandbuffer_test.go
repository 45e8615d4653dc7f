// renderer/commandbuffer_test.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"slices"
	"testing"
)

func colorBuffer(size int) Buffer {
	return Buffer{
		ID: 7,
		Info: BufferInfo{
			Role:   RoleConstant,
			Usage:  UsageDynamic,
			Bind:   BindShaderResource,
			Size:   size,
			Stride: 16,
		},
	}
}

type walked struct {
	cmd  uint32
	args []uint32
}

func walk(t *testing.T, cb *CommandBuffer) []walked {
	t.Helper()
	var w []walked
	if err := cb.Walk(func(cmd uint32, args []uint32) {
		w = append(w, walked{cmd: cmd, args: slices.Clone(args)})
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return w
}

func TestClearRGBA(t *testing.T) {
	var cb CommandBuffer
	cb.ClearRGBA(DefaultTarget, RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1})

	w := walk(t, &cb)
	if len(w) != 1 || w[0].cmd != RendererClearRGBA {
		t.Fatalf("got %+v, expected a single ClearRGBA", w)
	}
	args := w[0].args
	if args[0] != DefaultTarget.ID {
		t.Errorf("target %d, expected %d", args[0], DefaultTarget.ID)
	}
	got := [4]float32{Float(args[1]), Float(args[2]), Float(args[3]), Float(args[4])}
	if got != [4]float32{0.25, 0.5, 0.75, 1} {
		t.Errorf("clear color %v", got)
	}
}

func TestUpdateBuffer(t *testing.T) {
	var cb CommandBuffer
	b := colorBuffer(1)

	if err := cb.UpdateBuffer(b, []RGBA{Red}, 0); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}

	w := walk(t, &cb)
	if len(w) != 1 || w[0].cmd != RendererUpdateBuffer {
		t.Fatalf("got %+v, expected a single UpdateBuffer", w)
	}
	args := w[0].args
	if args[0] != 7 || args[1] != uint32(RoleConstant) || args[2] != 0 || args[3] != 4 {
		t.Errorf("unexpected header %v", args[:4])
	}
	var c [4]float32
	for i := range c {
		c[i] = Float(args[4+i])
	}
	if c != Red.Array() {
		t.Errorf("payload %v, expected %v", c, Red.Array())
	}
}

func TestUpdateBufferErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		buf    Buffer
		data   []RGBA
		offset int
		err    error
	}{
		{"overflow", colorBuffer(1), []RGBA{Red, Black}, 0, ErrBufferOverflow},
		{"offset past end", colorBuffer(1), []RGBA{Red}, 1, ErrBufferOverflow},
		{"negative offset", colorBuffer(1), []RGBA{Red}, -1, ErrBufferOverflow},
		{"static", Buffer{Info: BufferInfo{Usage: UsageData, Size: 1, Stride: 16}}, []RGBA{Red}, 0, ErrNotDynamic},
		{"stride", Buffer{Info: BufferInfo{Usage: UsageDynamic, Size: 4, Stride: 8}}, []RGBA{Red}, 0, ErrStrideMismatch},
	} {
		var cb CommandBuffer
		err := cb.UpdateBuffer(test.buf, test.data, test.offset)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got error %v, expected %v", test.name, err, test.err)
		}
		if len(cb.Buf) != 0 {
			t.Errorf("%s: commands recorded despite error", test.name)
		}
	}
}

func TestWalkMalformed(t *testing.T) {
	for _, buf := range [][]uint32{
		{rendererCommandCount},
		{RendererClearRGBA, 0, 0},
		{RendererUpdateBuffer, 1, 2, 0, 4, 0},
	} {
		cb := CommandBuffer{Buf: buf}
		if err := cb.Walk(func(uint32, []uint32) {}); err == nil {
			t.Errorf("%v: expected error from Walk", buf)
		}
	}
}

func TestFlushResets(t *testing.T) {
	var cb CommandBuffer
	cb.ClearRGBA(DefaultTarget, Black)
	cb.ResetState()

	d := &countingDevice{}
	cb.Flush(d)
	if d.calls != 1 || d.words != 6+1 {
		t.Errorf("device saw %d calls with %d words, expected 1 and 7", d.calls, d.words)
	}
	if len(cb.Buf) != 0 {
		t.Errorf("command buffer not reset after Flush")
	}
}

func TestCommandBufferPool(t *testing.T) {
	cb := GetCommandBuffer()
	cb.ResetState()
	ReturnCommandBuffer(cb)
	if len(cb.Buf) != 0 {
		t.Errorf("returned command buffer not reset")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var cb CommandBuffer
	cb.ClearRGBA(DefaultTarget, Black)
	c := cb.Clone()
	cb.Buf[0] = RendererResetState
	if c.Buf[0] != RendererClearRGBA {
		t.Errorf("clone shares storage with original")
	}
}

// countingDevice is a Device that only records what it was asked to
// render.
type countingDevice struct {
	calls, words int
}

func (d *countingDevice) CreatePipeline(PipelineDesc) (Pipeline, error) { return Pipeline{}, nil }
func (d *countingDevice) CreateVertexBufferWithSlice([]Vertex, []uint16) (Buffer, Slice, error) {
	return Buffer{}, Slice{}, nil
}
func (d *countingDevice) CreateBuffer(BufferInfo) (Buffer, error) { return Buffer{}, nil }
func (d *countingDevice) ViewBufferAsShaderResource(Buffer) (ShaderResourceView, error) {
	return ShaderResourceView{}, nil
}
func (d *countingDevice) CreateSampler(SamplerInfo) Sampler { return Sampler{} }
func (d *countingDevice) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	d.calls++
	d.words += len(cb.Buf)
	return RendererStats{}
}
func (d *countingDevice) Cleanup() {}
func (d *countingDevice) Dispose() {}
