// Package output delivers transcribed text to the focused application.
package output

import (
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	apperrors "github.com/voxkey/capture/internal/errors"
)

// Paster types text into the focused window via the clipboard and a
// synthesized Ctrl+V, then restores the previous clipboard contents.
type Paster struct {
	settleDelay  time.Duration
	restoreDelay time.Duration
}

// NewPaster creates a paste sink with conservative delays that let
// the window system observe clipboard changes before the keystroke.
func NewPaster() *Paster {
	return &Paster{
		settleDelay:  80 * time.Millisecond,
		restoreDelay: 120 * time.Millisecond,
	}
}

// Paste sends text to the focused application. The original clipboard
// contents are restored best-effort.
func (p *Paster) Paste(text string) error {
	if text == "" {
		return nil
	}

	orig, origErr := clipboard.ReadAll()
	if err := clipboard.WriteAll(text); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "write clipboard")
	}
	time.Sleep(p.settleDelay)

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "init key synthesis")
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "send paste keystroke")
	}

	time.Sleep(p.restoreDelay)
	if origErr == nil {
		if err := clipboard.WriteAll(orig); err != nil {
			slog.Debug("restore clipboard", "error", err)
		}
	}
	return nil
}
