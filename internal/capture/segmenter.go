// Package capture implements VAD-gated microphone capture sessions.
package capture

import (
	"log/slog"
	"time"

	"github.com/voxkey/capture/internal/vad"
)

// Segmentation defaults.
const (
	DefaultMinSpeechDuration  = 500 * time.Millisecond
	DefaultMaxSilenceDuration = 1000 * time.Millisecond
)

// SegmenterConfig controls speech boundary detection.
type SegmenterConfig struct {
	FrameDurationMs    int
	MinSpeechDuration  time.Duration
	MaxSilenceDuration time.Duration
}

// Hooks receive speech boundary notifications. They run synchronously
// on the capture thread and must not block.
type Hooks struct {
	OnSpeechStart func()
	OnSpeechEnd   func()
}

// Segmenter accumulates speech frames into segments using silence
// hysteresis: a segment opens on the first speech frame and closes
// once trailing silence exceeds MaxSilenceDuration. Segments whose
// accumulated speech is shorter than MinSpeechDuration are dropped
// as noise. Durations are derived from frame counts, so behavior is
// independent of processing speed.
//
// Not safe for concurrent use; a session's capture loop is the sole
// caller.
type Segmenter struct {
	classifier vad.Classifier
	cfg        SegmenterConfig
	hooks      Hooks

	inSpeech      bool
	speechFrames  []int16
	speechCount   int
	silenceFrames int
}

// NewSegmenter creates a segmenter around the given classifier.
func NewSegmenter(classifier vad.Classifier, cfg SegmenterConfig, hooks Hooks) *Segmenter {
	if cfg.MinSpeechDuration <= 0 {
		cfg.MinSpeechDuration = DefaultMinSpeechDuration
	}
	if cfg.MaxSilenceDuration <= 0 {
		cfg.MaxSilenceDuration = DefaultMaxSilenceDuration
	}
	return &Segmenter{
		classifier: classifier,
		cfg:        cfg,
		hooks:      hooks,
	}
}

// SetHooks replaces the speech lifecycle hooks. Call before the first
// ProcessFrame.
func (s *Segmenter) SetHooks(hooks Hooks) {
	s.hooks = hooks
}

// ProcessFrame classifies one frame and returns a completed segment,
// or nil if no segment boundary was reached. The returned buffer is
// owned by the caller.
func (s *Segmenter) ProcessFrame(frame []int16) []int16 {
	isSpeech, err := s.classifier.Classify(frame)
	if err != nil {
		slog.Debug("vad classify error", "error", err)
		return nil
	}

	if isSpeech {
		if !s.inSpeech {
			s.inSpeech = true
			if s.hooks.OnSpeechStart != nil {
				s.hooks.OnSpeechStart()
			}
		}
		s.speechFrames = append(s.speechFrames, frame...)
		s.speechCount++
		s.silenceFrames = 0
		return nil
	}

	if !s.inSpeech {
		return nil
	}

	s.silenceFrames++
	silence := time.Duration(s.silenceFrames*s.cfg.FrameDurationMs) * time.Millisecond
	if silence < s.cfg.MaxSilenceDuration {
		return nil
	}

	// Trailing silence long enough to close the segment.
	var segment []int16
	speech := time.Duration(s.speechCount*s.cfg.FrameDurationMs) * time.Millisecond
	if speech >= s.cfg.MinSpeechDuration {
		segment = s.speechFrames
		if s.hooks.OnSpeechEnd != nil {
			s.hooks.OnSpeechEnd()
		}
	}

	s.inSpeech = false
	s.speechFrames = nil
	s.speechCount = 0
	s.silenceFrames = 0
	return segment
}

// Reset clears segmentation state between sessions.
func (s *Segmenter) Reset() {
	s.inSpeech = false
	s.speechFrames = nil
	s.speechCount = 0
	s.silenceFrames = 0
}
