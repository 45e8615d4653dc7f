// platform/platform.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package platform

import (
	"fmt"
	"sync"
)

// Platform is the interface that abstracts platform-specific features like
// creating windows and handling window events.
type Platform interface {
	// PollEvents handles all pending window events, calling fn once for
	// each of them before returning. It does not block.
	PollEvents(fn func(Event))
	// PostRender performs the buffer swap.
	PostRender()
	// RequestClose asks for the window to be closed; a close event is
	// delivered by the next call to PollEvents. It is safe to call from
	// any goroutine.
	RequestClose()
	// EnableVSync specifies whether v-sync should be used when rendering;
	// v-sync is on by default and should only be disabled for benchmarking.
	EnableVSync(sync bool)
	// FramebufferSize returns the dimension of the framebuffer.
	FramebufferSize() [2]int
	// Dispose is called when the application is shutting down and is when
	// resources are be freed.
	Dispose()
}

type EventType int

const (
	// EventWindowClosed is delivered when the user closes the window or
	// RequestClose has been called.
	EventWindowClosed EventType = iota
	// EventFramebufferResized is delivered when the size of the
	// framebuffer changes; Size holds the new size.
	EventFramebufferResized
	// EventFocusChanged is delivered when the window gains or loses
	// focus; Focused holds the new state.
	EventFocusChanged
)

func (t EventType) String() string {
	switch t {
	case EventWindowClosed:
		return "WindowClosed"
	case EventFramebufferResized:
		return "FramebufferResized"
	case EventFocusChanged:
		return "FocusChanged"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

type Event struct {
	Type    EventType
	Size    [2]int
	Focused bool
}

type Config struct {
	InitialWindowSize     [2]int
	InitialWindowPosition [2]int
	Title                 string

	EnableMSAA  bool
	EnableVSync bool
}

// DefaultConfig returns the window configuration used when none has been
// provided.
func DefaultConfig() Config {
	return Config{
		InitialWindowSize:     [2]int{1024, 768},
		InitialWindowPosition: [2]int{100, 100},
		Title:                 "texquad",
		EnableVSync:           true,
	}
}

// EventQueue accumulates events from platform callbacks until they are
// delivered by PollEvents.
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Push(e Event) {
	q.events = append(q.events, e)
}

// Drain calls fn for each queued event, in the order they were pushed,
// and empties the queue. Events pushed by fn are delivered as well.
func (q *EventQueue) Drain(fn func(Event)) {
	for i := 0; i < len(q.events); i++ {
		fn(q.events[i])
	}
	q.events = q.events[:0]
}

func (q *EventQueue) Len() int {
	return len(q.events)
}

// CloseRequest records requests to close the window that may arrive from
// other goroutines. Once Dispose has run, requests are ignored so that a
// late request can't call into a backend that has been shut down.
type CloseRequest struct {
	mu        sync.Mutex
	requested bool
	disposed  bool
}

// Request records a close request and calls wake, unless Dispose has
// already been called, in which case it returns false.
func (c *CloseRequest) Request(wake func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return false
	}
	c.requested = true
	if wake != nil {
		wake()
	}
	return true
}

func (c *CloseRequest) Requested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requested
}

// Dispose marks the request as disposed and then calls release; no wake
// function passed to Request runs after release starts.
func (c *CloseRequest) Dispose(release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disposed = true
	if release != nil {
		release()
	}
}
