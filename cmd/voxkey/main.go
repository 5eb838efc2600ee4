// voxkey daemon - captures microphone speech, transcribes it, and
// serves transcripts over HTTP/WebSocket
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxkey/capture/internal/app"
	"github.com/voxkey/capture/internal/audio"
	"github.com/voxkey/capture/internal/capture"
	"github.com/voxkey/capture/internal/config"
	"github.com/voxkey/capture/internal/hotkey"
	"github.com/voxkey/capture/internal/server"
	"github.com/voxkey/capture/internal/transcribe"
	"github.com/voxkey/capture/internal/vad"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := audio.Initialize(); err != nil {
		slog.Error("audio subsystem init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = audio.Terminate() }()

	classifier, err := vad.NewClassifier(vad.Settings{
		Backend:        cfg.VADBackend,
		SampleRate:     cfg.SampleRate,
		FrameSamples:   cfg.FrameSamples(),
		Aggressiveness: cfg.VADAggressiveness,
		Threshold:      cfg.VADThreshold,
		ModelPath:      cfg.SileroModelPath,
	})
	if err != nil {
		slog.Error("vad setup failed", "backend", cfg.VADBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = classifier.Close() }()

	seg := capture.NewSegmenter(classifier, capture.SegmenterConfig{
		FrameDurationMs:    cfg.ChunkDurationMs,
		MinSpeechDuration:  time.Duration(cfg.MinSpeechSec * float64(time.Second)),
		MaxSilenceDuration: time.Duration(cfg.MaxSilenceSec * float64(time.Second)),
	}, capture.Hooks{})

	opener := func(deviceIndex int) (capture.FrameSource, error) {
		return audio.OpenMicrophone(deviceIndex, cfg.SampleRate, cfg.FrameSamples())
	}
	controller := capture.NewController(opener, seg, capture.DefaultJoinTimeout)

	transcriber := transcribe.NewClient(cfg.WhisperURL, cfg.SampleRate, 0)

	mgr := app.New(cfg, controller, transcriber)
	seg.SetHooks(mgr.SpeechHooks())

	// Global hotkeys
	keys := hotkey.NewHookSource()
	defer func() { _ = keys.Close() }()
	go mgr.Tracker().Run(keys)

	srv := server.New(mgr, audio.ListDevices)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("voxkey starting",
			"http", cfg.HTTPAddr,
			"whisper", cfg.WhisperURL,
			"vad", cfg.VADBackend,
			"ptt_key", cfg.PTTKey)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	mgr.StopVAD()
	slog.Info("shutdown complete")
}
