// Package config handles capture daemon configuration
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr          string
	WhisperURL        string
	SampleRate        int
	ChunkDurationMs   int
	VADBackend        string // "energy", "webrtc", "silero"
	VADAggressiveness int    // webrtc mode 0-3
	VADThreshold      float64
	SileroModelPath   string
	MinSpeechSec      float64
	MaxSilenceSec     float64
	PTTKey            string
	ToggleCombo       []string
	DeviceIndex       int // -1 means system default input
	Notify            bool
	PasteOutput       bool
	ArchiveDir        string
}

func Load() *Config {
	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8000"),
		WhisperURL:        getEnv("WHISPER_URL", "http://localhost:8080/inference"),
		SampleRate:        getEnvInt("SAMPLE_RATE", 16000),
		ChunkDurationMs:   getEnvInt("CHUNK_DURATION_MS", 30),
		VADBackend:        getEnv("VAD_BACKEND", "energy"),
		VADAggressiveness: getEnvInt("VAD_AGGRESSIVENESS", 2),
		// 0 lets each backend apply its own default; the energy and
		// silero scales are not comparable.
		VADThreshold:      getEnvFloat("VAD_THRESHOLD", 0),
		SileroModelPath:   getEnv("SILERO_MODEL_PATH", "silero_vad.onnx"),
		MinSpeechSec:      getEnvFloat("MIN_SPEECH_SEC", 0.5),
		MaxSilenceSec:     getEnvFloat("MAX_SILENCE_SEC", 1.0),
		PTTKey:            getEnv("PTT_KEY", "f9"),
		ToggleCombo:       getEnvList("TOGGLE_COMBO", []string{"ctrl", "alt", "m"}),
		DeviceIndex:       getEnvInt("DEVICE_INDEX", -1),
		Notify:            getEnvBool("NOTIFY", true),
		PasteOutput:       getEnvBool("PASTE_OUTPUT", false),
		ArchiveDir:        getEnv("ARCHIVE_DIR", ""),
	}
}

// FrameSamples returns samples per frame, truncated from rate * duration.
func (c *Config) FrameSamples() int {
	return c.SampleRate * c.ChunkDurationMs / 1000
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
