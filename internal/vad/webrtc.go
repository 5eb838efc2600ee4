package vad

import (
	"encoding/binary"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	apperrors "github.com/voxkey/capture/internal/errors"
)

// WebRTC wraps the WebRTC voice activity detector. It accepts
// 10/20/30ms frames at 8/16/32/48kHz and an aggressiveness mode
// from 0 (permissive) to 3 (strict).
type WebRTC struct {
	vad        *webrtcvad.VAD
	sampleRate int
	buf        []byte
}

// NewWebRTC creates a classifier for the given frame geometry.
func NewWebRTC(sampleRate, frameSamples, aggressiveness int) (*WebRTC, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "create webrtc vad")
	}
	if !v.ValidRateAndFrameLength(sampleRate, frameSamples) {
		return nil, apperrors.Newf(apperrors.CodeConfigInvalid,
			"unsupported rate/frame combination: %dHz/%d samples", sampleRate, frameSamples)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeConfigInvalid, "set vad mode %d", aggressiveness)
	}

	return &WebRTC{
		vad:        v,
		sampleRate: sampleRate,
		buf:        make([]byte, frameSamples*2),
	}, nil
}

// Classify runs the detector on one frame.
func (w *WebRTC) Classify(frame []int16) (bool, error) {
	if len(frame)*2 != len(w.buf) {
		w.buf = make([]byte, len(frame)*2)
	}
	for i, s := range frame {
		binary.LittleEndian.PutUint16(w.buf[i*2:], uint16(s))
	}

	active, err := w.vad.Process(w.sampleRate, w.buf)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "vad process")
	}
	return active, nil
}

// Close is a no-op; the detector holds no external resources.
func (w *WebRTC) Close() error { return nil }
