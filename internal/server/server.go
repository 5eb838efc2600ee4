// Package server provides HTTP and WebSocket handlers
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/voxkey/capture/internal/app"
	"github.com/voxkey/capture/internal/audio"
	"github.com/voxkey/capture/internal/trace"
)

// Per-connection rate limiting.
const (
	RateLimitMessages = 10
	RateLimitWindow   = time.Second
)

// Message types.
type Message struct {
	Type string `json:"type"`
}

type TranscriptMessage struct {
	Type     string  `json:"type"`
	Text     string  `json:"text"`
	Mode     string  `json:"mode"`
	Duration float64 `json:"duration_sec"`
}

type NoticeMessage struct {
	Type string `json:"type"`
}

type StatusMessage struct {
	Type   string     `json:"type"`
	Status app.Status `json:"status"`
}

type PTTKeyMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type PTTKeyResultMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
	OK   bool   `json:"ok"`
}

type RateLimitedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// DeviceLister enumerates input devices for the API.
type DeviceLister func() ([]audio.DeviceInfo, error)

// Server handles HTTP and WebSocket connections.
type Server struct {
	mgr         *app.Manager
	listDevices DeviceLister
	mu          sync.RWMutex
	conns       map[*websocket.Conn]struct{}
	rateLimits  map[*websocket.Conn]*rateLimiter
}

// New creates a server around the application manager.
func New(mgr *app.Manager, listDevices DeviceLister) *Server {
	s := &Server{
		mgr:         mgr,
		listDevices: listDevices,
		conns:       make(map[*websocket.Conn]struct{}),
		rateLimits:  make(map[*websocket.Conn]*rateLimiter),
	}

	// Start broadcasters
	go s.broadcastTranscripts()
	go s.broadcastNotices()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/devices", s.handleDevices)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/transcripts", s.handleTranscripts)
	mux.HandleFunc("POST /api/recording/start", s.handleRecordingStart)
	mux.HandleFunc("POST /api/recording/stop", s.handleRecordingStop)
	mux.HandleFunc("POST /api/ptt-key", s.handlePTTKey)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, RateLimitedMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "status":
			_ = wsjson.Write(baseCtx, conn, StatusMessage{Type: "status", Status: s.mgr.Status()})
		case "set_ptt_key":
			var req PTTKeyMessage
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			ok := s.mgr.UpdatePTTKey(req.Key)
			_ = wsjson.Write(baseCtx, conn, PTTKeyResultMessage{
				Type: "ptt_key_result",
				Key:  s.mgr.Status().PTTKey,
				OK:   ok,
			})
		}
	}
}

func (s *Server) broadcastTranscripts() {
	for evt := range s.mgr.TranscriptEvents() {
		msg := TranscriptMessage{
			Type:     "transcript",
			Text:     evt.Text,
			Mode:     evt.Mode,
			Duration: evt.Duration,
		}
		s.broadcast(msg)
	}
}

func (s *Server) broadcastNotices() {
	for n := range s.mgr.Notices() {
		s.broadcast(NoticeMessage{Type: n.Type})
	}
}

func (s *Server) broadcast(msg interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.conns {
		go func(c *websocket.Conn) {
			_ = wsjson.Write(context.Background(), c, msg)
		}(conn)
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.listDevices()
	if err != nil {
		trace.Logger(r.Context()).Error("device enumeration failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"devices": devices})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.mgr.Status())
}

// handleTranscripts returns stored entries, or with ?recent_sec=N the
// concatenated text from the last N seconds.
func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("recent_sec"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "recent_sec must be a non-negative integer"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"text": s.mgr.RecentText(seconds)})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"transcripts": s.mgr.Transcripts()})
}

func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.StartVAD(); err != nil {
		trace.Logger(r.Context()).Error("recording start failed", "error", err)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "recording_started"})
}

func (s *Server) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	s.mgr.StopVAD()
	json.NewEncoder(w).Encode(map[string]string{"status": "recording_stopped"})
}

func (s *Server) handlePTTKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}
	ok := s.mgr.UpdatePTTKey(req.Key)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":  ok,
		"key": s.mgr.Status().PTTKey,
	})
}
