// renderer/renderer.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrBufferOverflow     = errors.New("update extends past the end of the buffer")
	ErrNotDynamic         = errors.New("buffer was not created with UsageDynamic")
	ErrStrideMismatch     = errors.New("data does not match the buffer's element stride")
	ErrNotShaderResource  = errors.New("buffer was not created with BindShaderResource")
	ErrInvalidBufferInfo  = errors.New("buffer size and stride must be positive")
	ErrEmptyVertexBuffer  = errors.New("no vertices provided")
	ErrIndexOutOfRange    = errors.New("index refers past the end of the vertex buffer")
	ErrMissingShaderInput = errors.New("shader does not declare a name used by the pipeline")
)

// Device defines an interface for the graphics API that the frame
// renderer drives. There is currently a single implementation of it, in
// the opengl package, though having these details behind an interface
// keeps the rest of the system independent of the graphics API (and
// makes it possible to test it without a GPU).
//
// Resources are created directly on the Device; all drawing goes through
// a CommandBuffer that is later handed to RenderCommandBuffer.
type Device interface {
	// CreatePipeline compiles and links the shaders in the description
	// and resolves all of the names it refers to.
	CreatePipeline(desc PipelineDesc) (Pipeline, error)

	// CreateVertexBufferWithSlice uploads the given vertices and indices
	// and returns the vertex buffer along with a Slice covering all of
	// the indices.
	CreateVertexBufferWithSlice(vertices []Vertex, indices []uint16) (Buffer, Slice, error)

	// CreateBuffer allocates an uninitialized buffer; its contents are
	// provided later via CommandBuffer.UpdateBuffer.
	CreateBuffer(info BufferInfo) (Buffer, error)

	// ViewBufferAsShaderResource returns a view of the buffer that
	// shaders can sample from.
	ViewBufferAsShaderResource(b Buffer) (ShaderResourceView, error)

	// CreateSampler returns a sampler with the specified filtering.
	CreateSampler(info SamplerInfo) Sampler

	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) RendererStats

	// Cleanup releases resources that are no longer referenced. It is
	// cheap and is called once per frame.
	Cleanup()

	// Dispose releases all resources allocated by the device.
	Dispose()
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	nBuffers, bufferBytes int
	nClears               int
	nUpdates, updateBytes int
	nDrawCalls            int
	nTriangles            int
}

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f KB), %d clears, %d updates (%d bytes), %d draw calls: %d tris",
		rs.nBuffers, float32(rs.bufferBytes)/1024, rs.nClears, rs.nUpdates, rs.updateBytes,
		rs.nDrawCalls, rs.nTriangles)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.nBuffers += s.nBuffers
	rs.bufferBytes += s.bufferBytes
	rs.nClears += s.nClears
	rs.nUpdates += s.nUpdates
	rs.updateBytes += s.updateBytes
	rs.nDrawCalls += s.nDrawCalls
	rs.nTriangles += s.nTriangles
}

// The following are used by Device implementations to accumulate
// statistics as they execute commands.

func (rs *RendererStats) CountBuffer(bytes int) {
	rs.nBuffers++
	rs.bufferBytes += bytes
}

func (rs *RendererStats) CountClear() {
	rs.nClears++
}

func (rs *RendererStats) CountUpdate(bytes int) {
	rs.nUpdates++
	rs.updateBytes += bytes
}

func (rs *RendererStats) CountDraw(triangles int) {
	rs.nDrawCalls++
	rs.nTriangles += triangles
}

// DrawCalls returns the number of draw commands executed.
func (rs RendererStats) DrawCalls() int { return rs.nDrawCalls }

// Triangles returns the number of triangles drawn.
func (rs RendererStats) Triangles() int { return rs.nTriangles }

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.nBuffers),
		slog.Int("buffer_memory", rs.bufferBytes),
		slog.Int("clears", rs.nClears),
		slog.Int("updates", rs.nUpdates),
		slog.Int("update_bytes", rs.updateBytes),
		slog.Int("draw_calls", rs.nDrawCalls),
		slog.Int("tris", rs.nTriangles),
	)
}
