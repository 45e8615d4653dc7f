// platform/glfwplatform/glfw.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package glfwplatform implements platform.Platform using GLFW with an
// OpenGL 3.3 core profile context.
package glfwplatform

import (
	"fmt"
	"runtime"

	"github.com/texquad/texquad/log"
	"github.com/texquad/texquad/platform"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform implements the Platform interface using GLFW.
type glfwPlatform struct {
	window *glfw.Window
	config *platform.Config
	lg     *log.Logger

	events      platform.EventQueue
	closeQueued bool
	// Set by RequestClose, possibly from another goroutine.
	closeRequest platform.CloseRequest
}

// New returns a new instance of a Platform implemented with a window
// of the specified size open at the specified position on the screen.
// The window's GL context is current on the calling thread when New
// returns.
func New(config *platform.Config, lg *log.Logger) (platform.Platform, error) {
	lg.Info("Starting GLFW initialization")
	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	defaults := platform.DefaultConfig()
	if config.InitialWindowSize[0] <= 0 || config.InitialWindowSize[1] <= 0 {
		config.InitialWindowSize = defaults.InitialWindowSize
	}
	if config.Title == "" {
		config.Title = defaults.Title
	}

	var vm *glfw.VidMode
	if m := glfw.GetPrimaryMonitor(); m != nil {
		vm = m.GetVideoMode()
	} else {
		lg.Warn("No primary monitor found")
	}
	config.InitialWindowPosition = clampPosition(config.InitialWindowPosition, vm, defaults.InitialWindowPosition)

	for _, h := range windowHints(config, runtime.GOOS) {
		glfw.WindowHint(h.hint, h.value)
	}

	window, err := glfw.CreateWindow(config.InitialWindowSize[0], config.InitialWindowSize[1], config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.SetPos(config.InitialWindowPosition[0], config.InitialWindowPosition[1])
	window.Show()
	window.MakeContextCurrent()

	p := &glfwPlatform{
		window: window,
		config: config,
		lg:     lg,
	}
	p.installCallbacks()
	p.EnableVSync(config.EnableVSync)

	lg.Info("Finished GLFW initialization")
	return p, nil
}

type windowHint struct {
	hint  glfw.Hint
	value int
}

// windowHints returns the hints for a window with an OpenGL 3.3 core
// context and an sRGB-capable framebuffer. The default depth buffer is
// kept, though nothing draws with depth.
func windowHints(config *platform.Config, goos string) []windowHint {
	hints := []windowHint{
		{glfw.ContextVersionMajor, 3},
		{glfw.ContextVersionMinor, 3},
		{glfw.OpenGLProfile, glfw.OpenGLCoreProfile},
		{glfw.SRGBCapable, glfw.True},
		// Start with an invisible window so that we can position it first
		{glfw.Visible, glfw.False},
	}
	if goos == "darwin" {
		hints = append(hints, windowHint{glfw.OpenGLForwardCompatible, glfw.True})
	}
	// Maybe enable multisampling
	if config.EnableMSAA {
		hints = append(hints, windowHint{glfw.Samples, 4})
	}
	return hints
}

// clampPosition returns pos if it is on the screen described by vm and def
// otherwise. Without a video mode there's no way to tell, so def is used.
func clampPosition(pos [2]int, vm *glfw.VidMode, def [2]int) [2]int {
	if vm == nil || pos[0] < 0 || pos[1] < 0 || pos[0] > vm.Width || pos[1] > vm.Height {
		return def
	}
	return pos
}

func (g *glfwPlatform) installCallbacks() {
	g.window.SetCloseCallback(g.windowClose)
	g.window.SetFramebufferSizeCallback(g.framebufferResize)
	g.window.SetFocusCallback(g.focusChange)
}

func (g *glfwPlatform) windowClose(w *glfw.Window) {
	g.queueClose()
}

func (g *glfwPlatform) framebufferResize(w *glfw.Window, width, height int) {
	g.events.Push(platform.Event{Type: platform.EventFramebufferResized, Size: [2]int{width, height}})
}

func (g *glfwPlatform) focusChange(w *glfw.Window, focused bool) {
	g.events.Push(platform.Event{Type: platform.EventFocusChanged, Focused: focused})
}

// queueClose makes sure that exactly one close event is delivered.
func (g *glfwPlatform) queueClose() {
	if !g.closeQueued {
		g.closeQueued = true
		g.events.Push(platform.Event{Type: platform.EventWindowClosed})
	}
}

func (g *glfwPlatform) PollEvents(fn func(platform.Event)) {
	glfw.PollEvents()

	if g.closeRequest.Requested() {
		g.queueClose()
	}

	g.events.Drain(fn)
}

func (g *glfwPlatform) RequestClose() {
	// Wake up the event loop in case it is waiting on events. Requests
	// that arrive after Dispose are dropped since GLFW has been terminated.
	if !g.closeRequest.Request(glfw.PostEmptyEvent) {
		g.lg.Debug("close requested after platform was disposed")
	}
}

func (g *glfwPlatform) PostRender() {
	g.window.SwapBuffers()
}

func (g *glfwPlatform) EnableVSync(sync bool) {
	if sync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (g *glfwPlatform) FramebufferSize() [2]int {
	w, h := g.window.GetFramebufferSize()
	return [2]int{w, h}
}

func (g *glfwPlatform) Dispose() {
	g.closeRequest.Dispose(func() {
		g.window.Destroy()
		glfw.Terminate()
	})
}
