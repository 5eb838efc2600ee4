// Package app wires hotkeys, capture sessions, transcription, and
// output delivery into one application manager.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/voxkey/capture/internal/audio"
	"github.com/voxkey/capture/internal/capture"
	"github.com/voxkey/capture/internal/config"
	"github.com/voxkey/capture/internal/hotkey"
	"github.com/voxkey/capture/internal/output"
	"github.com/voxkey/capture/internal/syncx"
	"github.com/voxkey/capture/internal/trace"
	"github.com/voxkey/capture/internal/transcript"
)

// Capture modes.
const (
	ModeIdle = "idle"
	ModeVAD  = "vad"
	ModePTT  = "ptt"
)

// Status is the externally visible application state.
type Status struct {
	Recording bool   `json:"recording"`
	Mode      string `json:"mode"`
	PTTKey    string `json:"ptt_key"`
	Segments  int    `json:"segments"`
	LastText  string `json:"last_text"`
}

// Notice is a lifecycle event pushed to UI subscribers.
type Notice struct {
	Type string `json:"type"` // speech_start, speech_end, ptt_start, ptt_stop, toggle
}

// Transcriber converts captured samples to text.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// Manager coordinates the capture controller, key tracker, and
// downstream transcript consumers.
type Manager struct {
	cfg         *config.Config
	controller  *capture.Controller
	tracker     *hotkey.Tracker
	transcripts *transcript.MemoryStore
	transcriber Transcriber
	paster      *output.Paster

	status  *syncx.RWGuard[Status]
	notices chan Notice
}

// New builds the manager and binds hotkey signals to capture
// operations.
func New(cfg *config.Config, controller *capture.Controller, transcriber Transcriber) *Manager {
	m := &Manager{
		cfg:         cfg,
		controller:  controller,
		transcripts: transcript.NewStore(100, 100),
		transcriber: transcriber,
		notices:     make(chan Notice, 32),
	}
	if cfg.PasteOutput {
		m.paster = output.NewPaster()
	}

	m.tracker = hotkey.NewTracker(cfg.PTTKey, cfg.ToggleCombo, hotkey.Callbacks{
		OnPushToTalkStart: m.onPTTStart,
		OnPushToTalkStop:  m.onPTTStop,
		OnToggle:          m.onToggle,
	})

	m.status = syncx.NewGuard(Status{
		Mode:   ModeIdle,
		PTTKey: string(m.tracker.PTTKey()),
	})
	return m
}

// Tracker exposes the key tracker for wiring to a raw input source.
func (m *Manager) Tracker() *hotkey.Tracker { return m.tracker }

// Status returns a snapshot of application state.
func (m *Manager) Status() Status { return m.status.Get() }

// Notices returns the lifecycle event stream.
func (m *Manager) Notices() <-chan Notice { return m.notices }

// TranscriptEvents returns the transcription result stream.
func (m *Manager) TranscriptEvents() <-chan transcript.Event {
	return m.transcripts.Events()
}

// Transcripts returns stored entries, oldest first.
func (m *Manager) Transcripts() []transcript.Entry {
	return m.transcripts.Entries()
}

// RecentText returns the concatenated transcript text from the last
// N seconds.
func (m *Manager) RecentText(seconds int) string {
	return m.transcripts.GetRecent(seconds)
}

// UpdatePTTKey changes the push-to-talk key, reporting whether the
// requested name was honored.
func (m *Manager) UpdatePTTKey(name string) bool {
	ok := m.tracker.UpdatePTTKey(name)
	m.status.Write(func(s *Status) { s.PTTKey = string(m.tracker.PTTKey()) })
	return ok
}

// StartVAD begins a VAD-segmented capture session.
func (m *Manager) StartVAD() error {
	err := m.controller.StartRecording(m.cfg.DeviceIndex, func(samples []int16) {
		// Hand off so transcription latency never stalls the frame loop.
		go m.processSegment(samples, ModeVAD)
	})
	if err != nil {
		return err
	}
	m.status.Write(func(s *Status) {
		s.Recording = true
		s.Mode = ModeVAD
	})
	m.notify("Recording started", "Listening for speech")
	return nil
}

// StopVAD ends the VAD session. The remaining raw buffer is dropped;
// completed segments have already been dispatched.
func (m *Manager) StopVAD() {
	m.controller.StopRecording()
	m.status.Write(func(s *Status) {
		s.Recording = false
		s.Mode = ModeIdle
	})
	m.notify("Recording stopped", "")
}

// SpeechHooks returns segmenter hooks that surface boundary events to
// subscribers.
func (m *Manager) SpeechHooks() capture.Hooks {
	return capture.Hooks{
		OnSpeechStart: func() { m.emit(Notice{Type: "speech_start"}) },
		OnSpeechEnd:   func() { m.emit(Notice{Type: "speech_end"}) },
	}
}

func (m *Manager) onPTTStart() {
	if err := m.controller.StartPushToTalk(m.cfg.DeviceIndex); err != nil {
		trace.Logger(context.Background()).Error("push-to-talk start failed", "error", err)
		return
	}
	m.status.Write(func(s *Status) {
		s.Recording = true
		s.Mode = ModePTT
	})
	m.emit(Notice{Type: "ptt_start"})
}

func (m *Manager) onPTTStop() {
	samples := m.controller.StopPushToTalk()
	m.status.Write(func(s *Status) {
		s.Recording = false
		s.Mode = ModeIdle
	})
	m.emit(Notice{Type: "ptt_stop"})

	if len(samples) > 0 {
		go m.processSegment(samples, ModePTT)
	}
}

func (m *Manager) onToggle() {
	m.emit(Notice{Type: "toggle"})
	st := m.Status()
	if st.Recording {
		// A PTT session must release the controller's ptt latch, or
		// the next press would silently no-op.
		if st.Mode == ModePTT {
			m.onPTTStop()
			return
		}
		m.StopVAD()
		return
	}
	if err := m.StartVAD(); err != nil {
		trace.Logger(context.Background()).Error("toggle start failed", "error", err)
	}
}

// processSegment runs the transcription pipeline for one segment.
func (m *Manager) processSegment(samples []int16, mode string) {
	ctx, span := trace.StartSpan(context.Background(), "process_segment")
	defer span.End()
	span.SetAttr("mode", mode)
	span.SetAttr("samples", len(samples))

	log := trace.Logger(ctx)
	duration := float64(len(samples)) / float64(m.cfg.SampleRate)

	if m.cfg.ArchiveDir != "" {
		if err := m.archive(samples); err != nil {
			log.Warn("segment archive failed", "error", err)
		}
	}

	text, err := m.transcriber.Transcribe(ctx, samples)
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Error("transcription error", "error", err)
		m.notify("Transcription failed", err.Error())
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.transcripts.Add(text, mode, duration)
	m.transcripts.Emit(transcript.Event{Text: text, Mode: mode, Duration: duration})
	segments := m.status.Update(func(s *Status) any {
		s.Segments++
		s.LastText = text
		return s.Segments
	}).(int)

	log.Info("transcribed", "mode", mode, "text", text, "duration_sec", duration, "segment", segments)

	if m.paster != nil {
		if err := m.paster.Paste(text); err != nil {
			log.Warn("paste failed", "error", err)
		}
	}
}

// archive writes the segment to a timestamped WAV in ArchiveDir.
func (m *Manager) archive(samples []int16) error {
	if err := os.MkdirAll(m.cfg.ArchiveDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("segment-%s.wav", time.Now().Format("20060102-150405.000"))
	return audio.WriteWAVFile(filepath.Join(m.cfg.ArchiveDir, name), samples, m.cfg.SampleRate)
}

func (m *Manager) emit(n Notice) {
	select {
	case m.notices <- n:
	default:
	}
}

func (m *Manager) notify(title, body string) {
	if !m.cfg.Notify {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		trace.Logger(context.Background()).Debug("desktop notification failed", "error", err)
	}
}
