// frame/frame.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package frame draws a full-screen quad filled with the color stored in a
// single-texel buffer, once per frame, until the window is closed.
package frame

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/platform"
	"github.com/texquad/texquad/renderer"
)

// ErrTerminated is returned by operations on a Renderer that has been
// disposed or whose window has been closed.
var ErrTerminated = errors.New("frame renderer has terminated")

type Options struct {
	FillColor  renderer.RGBA
	ClearColor renderer.RGBA
	// Number of frames between logging rendering statistics; 0 disables
	// it.
	StatsInterval int
	// If non-nil, the commands for the first frames are recorded.
	Capture *renderer.CaptureRecorder
}

func DefaultOptions() Options {
	return Options{
		FillColor:     renderer.Red,
		ClearColor:    renderer.Black,
		StatsInterval: 18000, // every 5 minutes at 60fps
	}
}

type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "terminated"
}

// Renderer owns the quad, its pipeline and the color buffer, and draws
// them each frame.
type Renderer struct {
	plat platform.Platform
	dev  renderer.Device
	lg   *log.Logger
	opts Options

	cb     *renderer.CommandBuffer
	bundle renderer.Bundle
	texBuf renderer.Buffer
	color  renderer.RGBA

	state  State
	frames int
	stats  renderer.RendererStats
}

// New creates all of the GPU resources needed to draw the quad and records
// the initial fill color; it is uploaded along with the first frame. Any
// failure is returned as an error, in which case no frames should be
// rendered.
func New(plat platform.Platform, dev renderer.Device, opts Options, lg *log.Logger) (*Renderer, error) {
	pso, err := dev.CreatePipeline(PipelineDesc())
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	vb, slice, err := dev.CreateVertexBufferWithSlice(QuadVertices(), QuadIndices())
	if err != nil {
		return nil, fmt.Errorf("failed to create quad buffers: %w", err)
	}

	texBuf, err := dev.CreateBuffer(colorBufferInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to create color buffer: %w", err)
	}

	srv, err := dev.ViewBufferAsShaderResource(texBuf)
	if err != nil {
		return nil, fmt.Errorf("failed to create color buffer view: %w", err)
	}
	sampler := dev.CreateSampler(renderer.SamplerInfo{Filter: renderer.FilterScale, Wrap: renderer.WrapTile})

	bundle, err := renderer.NewBundle(slice, pso, renderer.PipelineData{
		Vertex:   vb,
		Textures: []renderer.TextureSampler{{View: srv, Sampler: sampler}},
		Out:      renderer.DefaultTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	r := &Renderer{
		plat:   plat,
		dev:    dev,
		lg:     lg,
		opts:   opts,
		cb:     renderer.GetCommandBuffer(),
		bundle: bundle,
		texBuf: texBuf,
	}
	if err := r.SetColor(opts.FillColor); err != nil {
		renderer.ReturnCommandBuffer(r.cb)
		return nil, fmt.Errorf("failed to set fill color: %w", err)
	}

	lg.Info("Frame renderer initialized", slog.Any("fill", opts.FillColor), slog.Any("clear", opts.ClearColor),
		slog.Any("framebuffer", plat.FramebufferSize()))
	return r, nil
}

// SetColor records an update of the color buffer; the quad is drawn with
// the new color starting with the next frame.
func (r *Renderer) SetColor(c renderer.RGBA) error {
	if r.cb == nil || r.state == StateTerminated {
		return ErrTerminated
	}
	if err := r.cb.UpdateBuffer(r.texBuf, []renderer.RGBA{c}, 0); err != nil {
		return err
	}
	r.color = c
	return nil
}

// Color returns the color most recently written to the color buffer.
func (r *Renderer) Color() renderer.RGBA {
	return r.color
}

func (r *Renderer) State() State {
	return r.state
}

// Frames returns the number of frames that have been rendered.
func (r *Renderer) Frames() int {
	return r.frames
}

func (r *Renderer) Stats() renderer.RendererStats {
	return r.stats
}

// Frame runs one iteration of the event loop: pending window events are
// processed and then a frame is drawn and presented. It returns false once
// the window has been closed, after which further calls do nothing.
func (r *Renderer) Frame() bool {
	if r.state == StateTerminated {
		return false
	}

	closed := false
	r.plat.PollEvents(func(e platform.Event) {
		switch e.Type {
		case platform.EventWindowClosed:
			closed = true
		default:
			r.lg.Debug("ignoring window event", slog.String("type", e.Type.String()),
				slog.Any("size", e.Size), slog.Bool("focused", e.Focused))
		}
	})

	r.cb.ClearRGBA(r.bundle.Data.Out, r.opts.ClearColor)
	r.bundle.Encode(r.cb)
	r.cb.ResetState()
	r.opts.Capture.Record(r.frames, r.cb)
	r.stats.Merge(r.cb.Flush(r.dev))
	r.plat.PostRender()
	r.dev.Cleanup()
	r.frames++

	if r.opts.StatsInterval > 0 && r.frames%r.opts.StatsInterval == 0 {
		r.lg.Info("performance", slog.Int("frames", r.frames), slog.Any("stats", r.stats))
	}

	if closed {
		r.state = StateTerminated
		r.lg.Infof("Window closed after %d frames", r.frames)
		return false
	}
	return true
}

// Run renders frames until the window is closed.
func (r *Renderer) Run() {
	for r.Frame() {
	}
}

// Dispose releases the renderer's host-side resources. The device and
// platform are owned by the caller.
func (r *Renderer) Dispose() {
	if r.cb != nil {
		renderer.ReturnCommandBuffer(r.cb)
		r.cb = nil
	}
	r.state = StateTerminated
}
