// Package transcribe sends captured audio to a whisper-compatible
// HTTP endpoint and returns the recognized text.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/voxkey/capture/internal/audio"
	apperrors "github.com/voxkey/capture/internal/errors"
	"github.com/voxkey/capture/internal/resilience"
	"github.com/voxkey/capture/internal/trace"
)

// DefaultTimeout bounds a single transcription request.
const DefaultTimeout = 30 * time.Second

// Client posts WAV-wrapped PCM to a transcription server. Transient
// failures are retried with backoff; sustained failures trip a
// circuit breaker so capture sessions keep running while the server
// is down.
type Client struct {
	url        string
	sampleRate int
	httpClient *http.Client
	retryCfg   resilience.RetryConfig
	breaker    *resilience.Breaker
}

// NewClient creates a transcription client for the given endpoint.
func NewClient(url string, sampleRate int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		sampleRate: sampleRate,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg: resilience.TranscribeRetryConfig(),
		// Hotkey-driven requests want the breaker to trip and recover
		// quickly rather than queue failures for 30s.
		breaker: resilience.New(resilience.FastConfig()),
	}
}

// Transcribe uploads the samples and returns the recognized text.
// Empty audio short-circuits to an empty result.
func (c *Client) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	ctx, span := trace.StartSpan(ctx, "transcribe")
	span.SetAttr("samples", len(samples))
	defer span.End()

	wav := audio.BuildWAV(samples, c.sampleRate)

	text, err := resilience.ExecuteWithResult(c.breaker, func() (string, error) {
		var out string
		err := resilience.Retry(ctx, c.retryCfg, func() error {
			var attemptErr error
			out, attemptErr = c.post(ctx, wav)
			return attemptErr
		})
		return out, err
	})
	if err != nil {
		return "", err
	}

	trace.Logger(ctx).Debug("transcription complete",
		"chars", len(text),
		"audio_sec", float64(len(samples))/float64(c.sampleRate))
	return text, nil
}

func (c *Client) post(ctx context.Context, wav []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(wav))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInvalidArgument, "build transcription request")
	}
	req.Header.Set("Content-Type", "audio/wav")
	if tc, ok := trace.FromContext(ctx); ok {
		trace.InjectHeaders(tc, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "transcription request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.Newf(apperrors.CodeUnavailable, "transcription server status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", apperrors.Newf(apperrors.CodeTranscriptionFailed, "transcription rejected with status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeTranscriptionFailed, "decode transcription response")
	}
	return strings.TrimSpace(out.Text), nil
}
