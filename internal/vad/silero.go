package vad

import (
	"github.com/streamer45/silero-vad-go/speech"

	apperrors "github.com/voxkey/capture/internal/errors"
)

// sileroWindow is the fixed frame the Silero model consumes at 16kHz.
const sileroWindow = 512

// Silero wraps the Silero ONNX detector. The model consumes
// 512-sample windows, so incoming frames are re-chunked internally
// and the classifier holds the last known speech state between
// window boundaries.
type Silero struct {
	detector *speech.Detector
	pending  []float32
	inSpeech bool
}

// NewSilero loads the ONNX model at modelPath.
func NewSilero(modelPath string, sampleRate int, threshold float32) (*Silero, error) {
	if modelPath == "" {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "silero backend requires a model path")
	}
	if threshold <= 0 {
		threshold = 0.5
	}

	d, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:  modelPath,
		SampleRate: sampleRate,
		Threshold:  threshold,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "load silero model")
	}

	return &Silero{
		detector: d,
		pending:  make([]float32, 0, sileroWindow*2),
	}, nil
}

// Classify feeds the frame into the model window and reports the
// current speech state.
func (s *Silero) Classify(frame []int16) (bool, error) {
	for _, v := range frame {
		s.pending = append(s.pending, float32(v)/32768.0)
	}

	for len(s.pending) >= sileroWindow {
		window := s.pending[:sileroWindow]
		event, err := s.detector.DetectStreamFrame(window)
		s.pending = s.pending[sileroWindow:]
		if err != nil {
			// The detector can desync on abrupt stream restarts;
			// reset and resume from silence.
			s.detector.Reset()
			s.inSpeech = false
			return false, apperrors.Wrap(err, apperrors.CodeInternal, "silero detect")
		}
		if event != nil {
			if event.IsStart {
				s.inSpeech = true
			}
			if event.IsEnd {
				s.inSpeech = false
			}
		}
	}

	return s.inSpeech, nil
}

// Close releases the ONNX session.
func (s *Silero) Close() error {
	return s.detector.Destroy()
}
