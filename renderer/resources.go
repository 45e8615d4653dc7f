// renderer/resources.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// Vertex is the single vertex format used by the renderer: a 2D position
// in normalized device coordinates.
type Vertex struct {
	Pos [2]float32
}

// VertexStride is the size of a Vertex in bytes.
const VertexStride = 8

// BufferRole describes how a buffer is used by the pipeline.
type BufferRole int

const (
	RoleVertex BufferRole = iota
	RoleIndex
	RoleConstant
)

func (r BufferRole) String() string {
	switch r {
	case RoleVertex:
		return "vertex"
	case RoleIndex:
		return "index"
	case RoleConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// Usage describes how often a buffer's contents are expected to change.
type Usage int

const (
	// UsageData buffers are written once at creation time.
	UsageData Usage = iota
	// UsageDynamic buffers are updated by the host via UpdateBuffer.
	UsageDynamic
)

// Bind is a set of flags describing how a buffer may be bound.
type Bind uint8

const (
	BindShaderResource Bind = 1 << iota
)

// BufferInfo describes a buffer: Size is the number of elements and Stride
// the size of each element in bytes.
type BufferInfo struct {
	Role   BufferRole
	Usage  Usage
	Bind   Bind
	Size   int
	Stride int
}

// Bytes returns the total size of the buffer in bytes.
func (bi BufferInfo) Bytes() int {
	return bi.Size * bi.Stride
}

// Buffer is a handle to a buffer allocated by a Device.
type Buffer struct {
	ID   uint32
	Info BufferInfo
}

// Slice is a range of indices in an index buffer that is drawn as a list
// of triangles.
type Slice struct {
	IndexBuffer Buffer
	Start       int
	Count       int
}

// ShaderResourceView is a handle to a view of a buffer that shaders
// can sample.
type ShaderResourceView struct {
	ID     uint32
	Buffer Buffer
}

// FilterMethod specifies texture filtering.
type FilterMethod int

const (
	// FilterScale uses nearest-neighbor filtering.
	FilterScale FilterMethod = iota
	FilterBilinear
)

// WrapMode specifies how out-of-range texture coordinates are handled.
type WrapMode int

const (
	WrapTile WrapMode = iota
	WrapClamp
)

type SamplerInfo struct {
	Filter FilterMethod
	Wrap   WrapMode
}

// Sampler is a handle to a sampler object.
type Sampler struct {
	ID   uint32
	Info SamplerInfo
}

// RenderTargetView identifies a color target that can be cleared and
// drawn to.
type RenderTargetView struct {
	ID uint32
}

// DefaultTarget is the window's framebuffer.
var DefaultTarget = RenderTargetView{ID: 0}
