// Package audio handles microphone device access and WAV encoding.
package audio

import (
	"github.com/gordonklaus/portaudio"

	apperrors "github.com/voxkey/capture/internal/errors"
)

// DeviceInfo describes an input-capable audio device.
type DeviceInfo struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	Channels          int     `json:"channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
	Default           bool    `json:"default"`
}

// Initialize prepares the portaudio host API. Call once at startup.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases the portaudio host API.
func Terminate() error {
	return portaudio.Terminate()
}

// ListDevices enumerates devices with at least one input channel.
func ListDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "enumerate audio devices")
	}

	defaultDev, _ := portaudio.DefaultInputDevice()

	out := make([]DeviceInfo, 0, len(devices))
	for i, dev := range devices {
		if dev.MaxInputChannels < 1 {
			continue
		}
		out = append(out, DeviceInfo{
			Index:             i,
			Name:              dev.Name,
			Channels:          dev.MaxInputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			Default:           defaultDev != nil && dev.Name == defaultDev.Name,
		})
	}
	return out, nil
}

// Microphone is a mono PCM16 input stream delivering fixed-size frames.
type Microphone struct {
	stream *portaudio.Stream
	buf    []int16
}

// OpenMicrophone opens the device at deviceIndex (negative selects the
// system default input) for mono capture at sampleRate, delivering
// frameSamples samples per Read.
func OpenMicrophone(deviceIndex, sampleRate, frameSamples int) (*Microphone, error) {
	var dev *portaudio.DeviceInfo
	var err error

	if deviceIndex < 0 {
		dev, err = portaudio.DefaultInputDevice()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDeviceOpenFailed, "default input device")
		}
	} else {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDeviceOpenFailed, "enumerate audio devices")
		}
		if deviceIndex >= len(devices) {
			return nil, apperrors.Newf(apperrors.CodeDeviceOpenFailed, "device index %d out of range", deviceIndex)
		}
		dev = devices[deviceIndex]
	}

	if dev.MaxInputChannels < 1 {
		return nil, apperrors.Newf(apperrors.CodeDeviceOpenFailed, "device %q has no input channels", dev.Name)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frameSamples,
	}

	buf := make([]int16, frameSamples)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeDeviceOpenFailed, "open stream on %q", dev.Name)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, apperrors.Wrapf(err, apperrors.CodeDeviceOpenFailed, "start stream on %q", dev.Name)
	}

	return &Microphone{stream: stream, buf: buf}, nil
}

// FrameSize returns the number of samples delivered per Read.
func (m *Microphone) FrameSize() int { return len(m.buf) }

// Read blocks until one frame is captured and returns a copy of it.
func (m *Microphone) Read() ([]int16, error) {
	if err := m.stream.Read(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDeviceReadFailed, "read audio frame")
	}
	return append([]int16(nil), m.buf...), nil
}

// Close stops and releases the stream.
func (m *Microphone) Close() error {
	if err := m.stream.Stop(); err != nil {
		_ = m.stream.Close()
		return err
	}
	return m.stream.Close()
}
