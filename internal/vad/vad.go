// Package vad provides frame-level voice activity classification.
// All classifiers consume fixed-size PCM16 mono frames and report
// whether the frame contains speech.
package vad

import (
	"strings"

	apperrors "github.com/voxkey/capture/internal/errors"
)

// Backend names accepted by NewClassifier.
const (
	BackendEnergy = "energy"
	BackendWebRTC = "webrtc"
	BackendSilero = "silero"
)

// Classifier decides whether a single audio frame contains speech.
// Implementations may be stateful; Classify is not safe for
// concurrent use.
type Classifier interface {
	Classify(frame []int16) (bool, error)
	Close() error
}

// Settings configures classifier construction.
type Settings struct {
	Backend        string
	SampleRate     int
	FrameSamples   int
	Aggressiveness int     // webrtc mode 0-3
	Threshold      float64 // energy RMS / silero probability threshold
	ModelPath      string  // silero onnx model
}

// NewClassifier builds the configured backend.
func NewClassifier(s Settings) (Classifier, error) {
	switch strings.ToLower(s.Backend) {
	case BackendEnergy:
		return NewEnergy(s.Threshold), nil
	case BackendWebRTC:
		return NewWebRTC(s.SampleRate, s.FrameSamples, s.Aggressiveness)
	case BackendSilero:
		return NewSilero(s.ModelPath, s.SampleRate, float32(s.Threshold))
	default:
		return nil, apperrors.Newf(apperrors.CodeConfigInvalid, "unknown vad backend %q", s.Backend)
	}
}
