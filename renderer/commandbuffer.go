// renderer/commandbuffer.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	gomath "math"
	"slices"
	"sync"

	"github.com/texquad/texquad/log"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows.  Comments
// after each command briefly describe its arguments.
//
// Resources are referred to by the ids of their handles; the buffer
// itself never holds vertex or index data. The only variable-length
// command is RendererUpdateBuffer, whose payload is stored inline.
const (
	RendererClearRGBA          = iota // int32 target id, 4 float32: RGBA
	RendererUpdateBuffer              // int32 buffer id, int32 role, int32 byte offset, int32 n, then n uint32 words
	RendererUsePipeline               // int32 program id
	RendererBindTarget                // int32 target id, int32 color mask, int32 blend mode
	RendererBindVertexBuffer          // int32 buffer id
	RendererBindTextureSampler        // int32 texture unit, int32 view id, int32 sampler id
	RendererDrawIndexed               // int32 index buffer id, int32 start, int32 count
	RendererResetState                // no args
	rendererCommandCount
)

// fixed number of arguments for each command; RendererUpdateBuffer is
// additionally followed by its payload.
var commandArgs = [rendererCommandCount]int{
	RendererClearRGBA:          5,
	RendererUpdateBuffer:       4,
	RendererUsePipeline:        1,
	RendererBindTarget:         3,
	RendererBindVertexBuffer:   1,
	RendererBindTextureSampler: 3,
	RendererDrawIndexed:        3,
	RendererResetState:         0,
}

var commandNames = [rendererCommandCount]string{
	RendererClearRGBA:          "ClearRGBA",
	RendererUpdateBuffer:       "UpdateBuffer",
	RendererUsePipeline:        "UsePipeline",
	RendererBindTarget:         "BindTarget",
	RendererBindVertexBuffer:   "BindVertexBuffer",
	RendererBindTextureSampler: "BindTextureSampler",
	RendererDrawIndexed:        "DrawIndexed",
	RendererResetState:         "ResetState",
}

// CommandName returns a human-readable name for the command.
func CommandName(cmd uint32) string {
	if cmd < rendererCommandCount {
		return commandNames[cmd]
	}
	return fmt.Sprintf("unknown(%d)", cmd)
}

// Also available as a global, though only used by CommandBuffer
var lg *log.Logger

// SetLogger sets the logger used to report misuse of CommandBuffers.
func SetLogger(l *log.Logger) {
	lg = l
}

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. Commands are recorded by the host and then
// executed all at once by a Device; a CommandBuffer plays the role of
// the encoder in other graphics APIs.
type CommandBuffer struct {
	Buf []uint32
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

// Flush executes the commands on the device and then resets the command
// buffer.
func (cb *CommandBuffer) Flush(d Device) RendererStats {
	stats := d.RenderCommandBuffer(cb)
	cb.Reset()
	return stats
}

// Clone returns a copy of the command buffer that does not share storage
// with it.
func (cb *CommandBuffer) Clone() *CommandBuffer {
	return &CommandBuffer{Buf: slices.Clone(cb.Buf)}
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 256 {
			sz = 256
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(uint32(i)) {
			lg.Errorf("%d: attempting to add non-32-bit value to CommandBuffer", i)
		}
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

// ClearRGBA adds a command to the command buffer to clear the target to
// the specified color.
func (cb *CommandBuffer) ClearRGBA(target RenderTargetView, color RGBA) {
	cb.appendInts(RendererClearRGBA, int(target.ID))
	cb.appendFloats(color.R, color.G, color.B, color.A)
}

// UpdateBuffer adds a command to the command buffer that writes the given
// colors into b starting at element offset. The buffer must be dynamic,
// have a 16-byte element stride, and be large enough to hold the data;
// otherwise an error is returned and nothing is recorded.
func (cb *CommandBuffer) UpdateBuffer(b Buffer, data []RGBA, offset int) error {
	if b.Info.Usage != UsageDynamic {
		return fmt.Errorf("buffer %d: %w", b.ID, ErrNotDynamic)
	}
	if b.Info.Stride != 16 {
		return fmt.Errorf("buffer %d: stride %d: %w", b.ID, b.Info.Stride, ErrStrideMismatch)
	}
	if offset < 0 || offset+len(data) > b.Info.Size {
		return fmt.Errorf("buffer %d: writing %d elements at %d of %d: %w", b.ID, len(data), offset,
			b.Info.Size, ErrBufferOverflow)
	}
	if len(data) == 0 {
		return nil
	}

	cb.appendInts(RendererUpdateBuffer, int(b.ID), int(b.Info.Role), offset*b.Info.Stride, 4*len(data))
	cb.growFor(4 * len(data))
	for _, c := range data {
		cb.appendFloats(c.R, c.G, c.B, c.A)
	}
	return nil
}

// UsePipeline adds a command to the command buffer that makes the
// pipeline's program current for subsequent commands.
func (cb *CommandBuffer) UsePipeline(p Pipeline) {
	cb.appendInts(RendererUsePipeline, int(p.ID))
}

// BindTarget adds a command to the command buffer that directs subsequent
// draws to the target with the given color mask and blending.
func (cb *CommandBuffer) BindTarget(target RenderTargetView, mask ColorMask, blend BlendMode) {
	cb.appendInts(RendererBindTarget, int(target.ID), int(mask), int(blend))
}

// BindVertexBuffer adds a command to the command buffer that binds the
// vertex buffer to the current pipeline's vertex attributes.
func (cb *CommandBuffer) BindVertexBuffer(b Buffer) {
	cb.appendInts(RendererBindVertexBuffer, int(b.ID))
}

// BindTextureSampler adds a command to the command buffer that binds the
// view and sampler to the given texture unit.
func (cb *CommandBuffer) BindTextureSampler(unit int, view ShaderResourceView, s Sampler) {
	cb.appendInts(RendererBindTextureSampler, unit, int(view.ID), int(s.ID))
}

// DrawIndexed adds a command to the command buffer to draw the triangles
// given by the slice's indices.
func (cb *CommandBuffer) DrawIndexed(s Slice) {
	cb.appendInts(RendererDrawIndexed, int(s.IndexBuffer.ID), s.Start, s.Count)
}

// ResetState adds a command to the command buffer that resets all of the
// assorted graphics state (program, blending, bound buffers and
// textures) to default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}

// Walk decodes the command buffer, calling fn for each command with the
// command's arguments (including any inline payload). It returns an error
// if the buffer is malformed.
func (cb *CommandBuffer) Walk(fn func(cmd uint32, args []uint32)) error {
	i := 0
	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++
		if cmd >= rendererCommandCount {
			return fmt.Errorf("offset %d: unknown command %d", i-1, cmd)
		}

		n := commandArgs[cmd]
		if i+n > len(cb.Buf) {
			return fmt.Errorf("offset %d: %s truncated", i-1, CommandName(cmd))
		}
		if cmd == RendererUpdateBuffer {
			n += int(cb.Buf[i+3])
			if i+n > len(cb.Buf) {
				return fmt.Errorf("offset %d: %s payload truncated", i-1, CommandName(cmd))
			}
		}

		fn(cmd, cb.Buf[i:i+n])
		i += n
	}
	return nil
}

// Float returns the float32 stored in a command argument.
func Float(v uint32) float32 {
	return gomath.Float32frombits(v)
}
