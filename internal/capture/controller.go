package capture

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultJoinTimeout bounds how long StopRecording waits for the
// capture goroutine to exit.
const DefaultJoinTimeout = 2 * time.Second

// FrameSource delivers fixed-size PCM16 frames from an input device.
type FrameSource interface {
	Read() ([]int16, error)
	Close() error
}

// Opener opens a frame source for the given device index; a negative
// index selects the system default input.
type Opener func(deviceIndex int) (FrameSource, error)

// SegmentCallback receives completed speech segments on the capture
// goroutine.
type SegmentCallback func(samples []int16)

// Controller owns a single capture session: a goroutine pulling
// frames from the device, feeding the segmenter, and accumulating
// the raw recording buffer. At most one session is active at a time.
type Controller struct {
	open        Opener
	seg         *Segmenter
	joinTimeout time.Duration

	mu        sync.Mutex
	recording bool
	pttActive bool
	source    FrameSource
	stop      chan struct{}
	done      chan struct{}
	buffer    []int16
}

// NewController creates a controller using the opener for device
// access. joinTimeout <= 0 selects the default.
func NewController(open Opener, seg *Segmenter, joinTimeout time.Duration) *Controller {
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	return &Controller{
		open:        open,
		seg:         seg,
		joinTimeout: joinTimeout,
	}
}

// IsRecording reports whether a session is active.
func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// StartRecording opens the device and begins a VAD-segmented session.
// Calling it while a session is active logs a warning and returns nil.
func (c *Controller) StartRecording(deviceIndex int, onSegment SegmentCallback) error {
	return c.startSession(deviceIndex, onSegment, true)
}

// StopRecording signals the capture goroutine to exit, joins it with
// a bounded timeout, closes the device, and returns the raw recording
// buffer. Always safe to call; with no active session it returns an
// empty buffer.
func (c *Controller) StopRecording() []int16 {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return nil
	}
	// Claim shutdown before releasing the lock so concurrent callers
	// take the not-recording path instead of closing stop twice.
	c.recording = false
	stop, done, src := c.stop, c.done, c.source
	c.source = nil
	c.mu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-time.After(c.joinTimeout):
		slog.Warn("capture loop did not exit before timeout, proceeding with shutdown")
	}

	if err := src.Close(); err != nil {
		slog.Warn("close frame source", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	buf := c.buffer
	c.buffer = nil

	slog.Info("recording stopped", "samples", len(buf))
	return buf
}

// StartPushToTalk begins a raw session with segmentation disabled:
// the whole interval between start and stop becomes one segment.
func (c *Controller) StartPushToTalk(deviceIndex int) error {
	c.mu.Lock()
	if c.pttActive {
		c.mu.Unlock()
		return nil
	}
	c.pttActive = true
	c.mu.Unlock()

	if err := c.startSession(deviceIndex, nil, false); err != nil {
		c.mu.Lock()
		c.pttActive = false
		c.mu.Unlock()
		return err
	}
	slog.Info("push-to-talk started")
	return nil
}

// StopPushToTalk ends the raw session and returns the full recording
// buffer. Safe to call when not active.
func (c *Controller) StopPushToTalk() []int16 {
	c.mu.Lock()
	if !c.pttActive {
		c.mu.Unlock()
		return nil
	}
	c.pttActive = false
	c.mu.Unlock()

	buf := c.StopRecording()
	slog.Info("push-to-talk stopped", "samples", len(buf))
	return buf
}

func (c *Controller) startSession(deviceIndex int, onSegment SegmentCallback, useVAD bool) error {
	c.mu.Lock()
	if c.recording {
		c.mu.Unlock()
		slog.Warn("already recording, ignoring start request")
		return nil
	}

	src, err := c.open(deviceIndex)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.recording = true
	c.source = src
	c.buffer = nil
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stop, c.done
	c.mu.Unlock()

	if c.seg != nil {
		c.seg.Reset()
	}

	go c.captureLoop(src, onSegment, useVAD, stop, done)

	slog.Info("recording started", "device", deviceIndex, "vad", useVAD)
	return nil
}

// captureLoop pulls one frame at a time until signaled to stop. Every
// frame lands in the recording buffer regardless of its speech
// classification.
func (c *Controller) captureLoop(src FrameSource, onSegment SegmentCallback, useVAD bool, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := src.Read()
		if err != nil {
			slog.Debug("frame read error", "error", err)
			continue
		}

		c.mu.Lock()
		// A loop that outlived its join timeout must not write into
		// a later session's buffer.
		if c.stop == stop {
			c.buffer = append(c.buffer, frame...)
		}
		c.mu.Unlock()

		if useVAD && c.seg != nil {
			if segment := c.seg.ProcessFrame(frame); segment != nil && onSegment != nil {
				onSegment(segment)
			}
		}
	}
}
