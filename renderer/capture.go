// renderer/capture.go
// Copyright(c) 2026 texquad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// CaptureVersion should be incremented whenever the command encoding
// changes in a way that makes older captures unreadable.
const CaptureVersion = 1

// CapturedFrame holds the commands that were flushed for one frame.
type CapturedFrame struct {
	Index    int
	Commands []uint32
}

// Capture is the on-disk representation of a series of captured frames:
// msgpack-encoded and then compressed with zstd.
type Capture struct {
	Version int
	Frames  []CapturedFrame
}

// CaptureRecorder accumulates the command buffers of the first frames
// that are rendered so that they can be saved for later inspection.
type CaptureRecorder struct {
	max    int
	frames []CapturedFrame
}

func NewCaptureRecorder(maxFrames int) *CaptureRecorder {
	return &CaptureRecorder{max: max(maxFrames, 0)}
}

// Record stores a copy of the command buffer's current contents. It
// returns false (and records nothing) once the maximum number of frames
// has been captured.
func (c *CaptureRecorder) Record(index int, cb *CommandBuffer) bool {
	if c == nil || len(c.frames) >= c.max {
		return false
	}
	c.frames = append(c.frames, CapturedFrame{Index: index, Commands: slices.Clone(cb.Buf)})
	return true
}

func (c *CaptureRecorder) Frames() []CapturedFrame {
	if c == nil {
		return nil
	}
	return c.frames
}

// Save writes the captured frames to w.
func (c *CaptureRecorder) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	capture := Capture{Version: CaptureVersion, Frames: c.Frames()}
	if err := msgpack.NewEncoder(zw).Encode(capture); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode capture: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// ReadCapture reads a capture written by CaptureRecorder.Save and checks
// that each frame's commands decode.
func ReadCapture(r io.Reader) (*Capture, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var capture Capture
	if err := msgpack.NewDecoder(zr).Decode(&capture); err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	if capture.Version != CaptureVersion {
		return nil, fmt.Errorf("capture version %d: expected %d", capture.Version, CaptureVersion)
	}

	for _, f := range capture.Frames {
		cb := CommandBuffer{Buf: f.Commands}
		if err := cb.Walk(func(uint32, []uint32) {}); err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Index, err)
		}
	}
	return &capture, nil
}
