// renderer/opengl/device.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package opengl implements renderer.Device using OpenGL 3.3 core
// profile. All methods must be called from the thread that owns the GL
// context.
package opengl

import (
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/renderer"

	"github.com/go-gl/gl/v3.3-core/gl"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Number of compiled shader objects kept around for reuse.
const shaderCacheSize = 16

type buffer struct {
	target uint32
	info   renderer.BufferInfo
}

type Device struct {
	lg  *log.Logger
	vao uint32

	shaders  *lru.Cache[string, uint32]
	programs map[uint32]*program
	buffers  map[uint32]buffer
	textures map[uint32]uint32 // texture id -> buffer id
	samplers map[uint32]renderer.SamplerInfo

	// Shader objects evicted from the cache; they are deleted by Cleanup.
	pendingShaders []uint32

	current *program
}

var _ renderer.Device = (*Device)(nil)

// NewDevice initializes OpenGL using the current context. The caller
// must already have made a 3.3 core context current.
func NewDevice(lg *log.Logger) (*Device, error) {
	renderer.SetLogger(lg)

	lg.Info("Starting OpenGL device initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	lg.Infof("OpenGL version %s vendor %s renderer %s GLSL %s",
		gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.VENDOR)),
		gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	d := &Device{
		lg:       lg,
		programs: make(map[uint32]*program),
		buffers:  make(map[uint32]buffer),
		textures: make(map[uint32]uint32),
		samplers: make(map[uint32]renderer.SamplerInfo),
	}

	var err error
	d.shaders, err = lru.NewWithEvict(shaderCacheSize, func(key string, id uint32) {
		d.pendingShaders = append(d.pendingShaders, id)
	})
	if err != nil {
		return nil, err
	}

	// The core profile requires a bound vertex array object for any
	// vertex specification; one suffices since the attribute layout is
	// re-specified by each BindVertexBuffer.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	// Targets are sRGB; let GL do the linear to sRGB conversion on write.
	gl.Enable(gl.FRAMEBUFFER_SRGB)

	if err := checkError("device initialization"); err != nil {
		return nil, err
	}

	lg.Info("Finished OpenGL device initialization")
	return d, nil
}

// checkError returns an error describing any pending GL errors.
func checkError(what string) error {
	var codes []uint32
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		codes = append(codes, e)
		if len(codes) == 8 {
			break
		}
	}
	if len(codes) > 0 {
		return fmt.Errorf("%s: GL error(s) %#x", what, codes)
	}
	return nil
}

func (d *Device) CreatePipeline(desc renderer.PipelineDesc) (renderer.Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return renderer.Pipeline{}, err
	}

	vs, err := d.shader(gl.VERTEX_SHADER, desc.VertexShader)
	if err != nil {
		return renderer.Pipeline{}, fmt.Errorf("%s: %w", desc.Label, err)
	}
	fs, err := d.shader(gl.FRAGMENT_SHADER, desc.FragmentShader)
	if err != nil {
		return renderer.Pipeline{}, fmt.Errorf("%s: %w", desc.Label, err)
	}

	id, err := linkProgram(vs, fs, desc.Targets[0].Name)
	if err != nil {
		return renderer.Pipeline{}, fmt.Errorf("%s: %w", desc.Label, err)
	}

	p, err := resolve(id, desc)
	if err != nil {
		gl.DeleteProgram(id)
		return renderer.Pipeline{}, fmt.Errorf("%s: %w", desc.Label, err)
	}
	d.programs[id] = p

	d.lg.Infof("Created pipeline %q: program %d", desc.Label, id)
	return renderer.Pipeline{ID: id, Desc: desc}, nil
}

func (d *Device) CreateVertexBufferWithSlice(vertices []renderer.Vertex, indices []uint16) (renderer.Buffer, renderer.Slice, error) {
	if len(vertices) == 0 {
		return renderer.Buffer{}, renderer.Slice{}, renderer.ErrEmptyVertexBuffer
	}
	if len(indices) == 0 {
		return renderer.Buffer{}, renderer.Slice{}, fmt.Errorf("no indices provided")
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return renderer.Buffer{}, renderer.Slice{}, fmt.Errorf("index %d = %d: %w", i, idx, renderer.ErrIndexOutOfRange)
		}
	}

	vb := renderer.Buffer{Info: renderer.BufferInfo{
		Role:   renderer.RoleVertex,
		Usage:  renderer.UsageData,
		Size:   len(vertices),
		Stride: renderer.VertexStride,
	}}
	gl.GenBuffers(1, &vb.ID)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.ID)
	gl.BufferData(gl.ARRAY_BUFFER, vb.Info.Bytes(), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	ib := renderer.Buffer{Info: renderer.BufferInfo{
		Role:   renderer.RoleIndex,
		Usage:  renderer.UsageData,
		Size:   len(indices),
		Stride: 2,
	}}
	gl.GenBuffers(1, &ib.ID)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.ID)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, ib.Info.Bytes(), unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	if err := checkError("vertex buffer creation"); err != nil {
		gl.DeleteBuffers(1, &vb.ID)
		gl.DeleteBuffers(1, &ib.ID)
		return renderer.Buffer{}, renderer.Slice{}, err
	}

	d.buffers[vb.ID] = buffer{target: gl.ARRAY_BUFFER, info: vb.Info}
	d.buffers[ib.ID] = buffer{target: gl.ELEMENT_ARRAY_BUFFER, info: ib.Info}
	d.lg.Infof("Created vertex buffer %d (%d vertices) and index buffer %d (%d indices)",
		vb.ID, len(vertices), ib.ID, len(indices))

	return vb, renderer.Slice{IndexBuffer: ib, Start: 0, Count: len(indices)}, nil
}

func bufferTarget(info renderer.BufferInfo) uint32 {
	switch info.Role {
	case renderer.RoleVertex:
		return gl.ARRAY_BUFFER
	case renderer.RoleIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	default:
		if info.Bind&renderer.BindShaderResource != 0 {
			return gl.TEXTURE_BUFFER
		}
		return gl.UNIFORM_BUFFER
	}
}

func (d *Device) CreateBuffer(info renderer.BufferInfo) (renderer.Buffer, error) {
	if info.Size <= 0 || info.Stride <= 0 {
		return renderer.Buffer{}, fmt.Errorf("size %d stride %d: %w", info.Size, info.Stride,
			renderer.ErrInvalidBufferInfo)
	}

	usage := uint32(gl.STATIC_DRAW)
	if info.Usage == renderer.UsageDynamic {
		usage = gl.DYNAMIC_DRAW
	}
	target := bufferTarget(info)

	b := renderer.Buffer{Info: info}
	gl.GenBuffers(1, &b.ID)
	gl.BindBuffer(target, b.ID)
	gl.BufferData(target, info.Bytes(), nil, usage)
	gl.BindBuffer(target, 0)

	if err := checkError("buffer creation"); err != nil {
		gl.DeleteBuffers(1, &b.ID)
		return renderer.Buffer{}, err
	}

	d.buffers[b.ID] = buffer{target: target, info: info}
	d.lg.Infof("Created %s buffer %d: %d bytes", info.Role, b.ID, info.Bytes())
	return b, nil
}

func (d *Device) ViewBufferAsShaderResource(b renderer.Buffer) (renderer.ShaderResourceView, error) {
	if b.Info.Bind&renderer.BindShaderResource == 0 {
		return renderer.ShaderResourceView{}, fmt.Errorf("buffer %d: %w", b.ID, renderer.ErrNotShaderResource)
	}
	if _, ok := d.buffers[b.ID]; !ok {
		return renderer.ShaderResourceView{}, fmt.Errorf("buffer %d: unknown buffer", b.ID)
	}
	if b.Info.Stride != 16 {
		return renderer.ShaderResourceView{}, fmt.Errorf("buffer %d: stride %d: only RGBA float32 texels are supported",
			b.ID, b.Info.Stride)
	}

	v := renderer.ShaderResourceView{Buffer: b}
	gl.GenTextures(1, &v.ID)
	gl.BindTexture(gl.TEXTURE_BUFFER, v.ID)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.RGBA32F, b.ID)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)

	if err := checkError("buffer view creation"); err != nil {
		gl.DeleteTextures(1, &v.ID)
		return renderer.ShaderResourceView{}, err
	}

	d.textures[v.ID] = b.ID
	return v, nil
}

func (d *Device) CreateSampler(info renderer.SamplerInfo) renderer.Sampler {
	filter := int32(gl.NEAREST)
	if info.Filter == renderer.FilterBilinear {
		filter = gl.LINEAR
	}
	wrap := int32(gl.REPEAT)
	if info.Wrap == renderer.WrapClamp {
		wrap = gl.CLAMP_TO_EDGE
	}

	s := renderer.Sampler{Info: info}
	gl.GenSamplers(1, &s.ID)
	gl.SamplerParameteri(s.ID, gl.TEXTURE_MIN_FILTER, filter)
	gl.SamplerParameteri(s.ID, gl.TEXTURE_MAG_FILTER, filter)
	gl.SamplerParameteri(s.ID, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(s.ID, gl.TEXTURE_WRAP_T, wrap)

	d.samplers[s.ID] = info
	return s
}

// blendFactors returns the source and destination factors for color and
// then alpha for the given blend mode; ok is false if blending should be
// disabled. Alpha blending adds the source alpha to the destination's.
func blendFactors(mode renderer.BlendMode) (f [4]uint32, ok bool) {
	switch mode {
	case renderer.BlendAlpha:
		return [4]uint32{gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE}, true
	default:
		return [4]uint32{}, false
	}
}

func (d *Device) RenderCommandBuffer(cb *renderer.CommandBuffer) renderer.RendererStats {
	var stats renderer.RendererStats
	stats.CountBuffer(4 * len(cb.Buf))

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int32 {
		return int32(ui32())
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}

	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++
		switch cmd {
		case renderer.RendererClearRGBA:
			gl.BindFramebuffer(gl.FRAMEBUFFER, ui32())
			r := float()
			g := float()
			b := float()
			a := float()
			// Clears are affected by the color mask.
			gl.ColorMask(true, true, true, true)
			gl.ClearColor(r, g, b, a)
			gl.Clear(gl.COLOR_BUFFER_BIT)
			stats.CountClear()

		case renderer.RendererUpdateBuffer:
			id := ui32()
			_ = ui32() // role
			offset := int(ui32())
			n := int(ui32())
			if buf, ok := d.buffers[id]; !ok {
				d.lg.Errorf("%d: update of unknown buffer", id)
			} else {
				gl.BindBuffer(buf.target, id)
				gl.BufferSubData(buf.target, offset, 4*n, unsafe.Pointer(&cb.Buf[i]))
				gl.BindBuffer(buf.target, 0)
				stats.CountUpdate(4 * n)
			}
			i += n

		case renderer.RendererUsePipeline:
			id := ui32()
			d.current = d.programs[id]
			if d.current == nil {
				d.lg.Errorf("%d: unknown pipeline", id)
			}
			gl.UseProgram(id)

		case renderer.RendererBindTarget:
			gl.BindFramebuffer(gl.FRAMEBUFFER, ui32())
			mask := renderer.ColorMask(ui32())
			gl.ColorMask(mask&renderer.ColorMaskRed != 0, mask&renderer.ColorMaskGreen != 0,
				mask&renderer.ColorMaskBlue != 0, mask&renderer.ColorMaskAlpha != 0)
			if f, ok := blendFactors(renderer.BlendMode(ui32())); ok {
				gl.Enable(gl.BLEND)
				gl.BlendFuncSeparate(f[0], f[1], f[2], f[3])
			} else {
				gl.Disable(gl.BLEND)
			}

		case renderer.RendererBindVertexBuffer:
			id := ui32()
			if d.current == nil {
				d.lg.Error("vertex buffer bound without a pipeline")
				break
			}
			gl.BindBuffer(gl.ARRAY_BUFFER, id)
			desc := d.current.desc
			for j, a := range desc.Attributes {
				loc := d.current.attribs[j]
				gl.VertexAttribPointer(loc, int32(a.Components), gl.FLOAT, false, int32(desc.Stride),
					gl.PtrOffset(a.Offset))
				gl.EnableVertexAttribArray(loc)
			}

		case renderer.RendererBindTextureSampler:
			unit := ui32()
			view := ui32()
			sampler := ui32()
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			gl.BindTexture(gl.TEXTURE_BUFFER, view)
			gl.BindSampler(unit, sampler)
			if d.current != nil && int(unit) < len(d.current.samplers) {
				gl.Uniform1i(d.current.samplers[unit], int32(unit))
			}

		case renderer.RendererDrawIndexed:
			ib := ui32()
			start := i32()
			count := i32()
			gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib)
			gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_SHORT, gl.PtrOffset(2*int(start)))
			stats.CountDraw(int(count / 3))

		case renderer.RendererResetState:
			d.current = nil
			gl.UseProgram(0)
			gl.Disable(gl.BLEND)
			gl.ColorMask(true, true, true, true)
			gl.BindTexture(gl.TEXTURE_BUFFER, 0)
			gl.BindBuffer(gl.ARRAY_BUFFER, 0)

		default:
			d.lg.Errorf("%d: unhandled command", cmd)
			return stats
		}
	}

	return stats
}

// Cleanup deletes shader objects that have been evicted from the cache
// and reports any GL errors raised since the last call.
func (d *Device) Cleanup() {
	for _, id := range d.pendingShaders {
		gl.DeleteShader(id)
	}
	if n := len(d.pendingShaders); n > 0 {
		d.lg.Debugf("deleted %d shader objects", n)
	}
	d.pendingShaders = d.pendingShaders[:0]

	if err := checkError("frame"); err != nil {
		d.lg.Warnf("%v", err)
	}
}

func (d *Device) Dispose() {
	gl.UseProgram(0)
	for id := range d.programs {
		gl.DeleteProgram(id)
	}
	for id := range d.textures {
		gl.DeleteTextures(1, &id)
	}
	for id := range d.samplers {
		gl.DeleteSamplers(1, &id)
	}
	for id := range d.buffers {
		gl.DeleteBuffers(1, &id)
	}
	gl.DeleteVertexArrays(1, &d.vao)

	d.shaders.Purge()
	d.Cleanup()

	clear(d.programs)
	clear(d.textures)
	clear(d.samplers)
	clear(d.buffers)
}
