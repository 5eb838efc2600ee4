package vad

import "math"

// DefaultEnergyThreshold suits 16kHz speech at typical microphone gain.
const DefaultEnergyThreshold = 0.015

// Energy is a pure-Go classifier based on normalized RMS level.
// It needs no model files or cgo, so it serves as the fallback
// backend on hosts where webrtc or silero cannot load.
type Energy struct {
	threshold float64
}

// NewEnergy creates an RMS classifier. A non-positive threshold
// selects the default.
func NewEnergy(threshold float64) *Energy {
	if threshold <= 0 {
		threshold = DefaultEnergyThreshold
	}
	return &Energy{threshold: threshold}
}

// Classify reports whether the frame's RMS level crosses the threshold.
func (e *Energy) Classify(frame []int16) (bool, error) {
	return rms(frame) >= e.threshold, nil
}

// Close is a no-op for the energy classifier.
func (e *Energy) Close() error { return nil }

// rms computes root-mean-square of PCM16 samples normalized to [0, 1].
func rms(pcm []int16) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum/float64(len(pcm))) / 32768.0
}
