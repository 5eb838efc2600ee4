package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// hookNames maps gohook key names that differ from our normalized
// identities.
var hookNames = map[string]Key{
	"lctrl": "ctrl_l", "rctrl": "ctrl_r",
	"lalt": "alt_l", "ralt": "alt_r",
	"lshift": "shift_l", "rshift": "shift_r",
	"lcmd": "super_l", "rcmd": "super_r",
	"lwin": "super_l", "rwin": "super_r",
	" ": "space",
}

// HookSource adapts the global keyboard hook into a key event stream.
type HookSource struct {
	events    chan Event
	closeOnce sync.Once
}

// NewHookSource installs the global hook and starts translating
// events. Call Close to uninstall it.
func NewHookSource() *HookSource {
	h := &HookSource{events: make(chan Event, 64)}
	go h.run()
	return h
}

func (h *HookSource) run() {
	defer close(h.events)

	for ev := range hook.Start() {
		var pressed bool
		switch ev.Kind {
		case hook.KeyDown, hook.KeyHold:
			pressed = true
		case hook.KeyUp:
			pressed = false
		default:
			continue
		}

		key, ok := translateHookEvent(ev)
		if !ok {
			continue
		}

		select {
		case h.events <- Event{Key: key, Pressed: pressed}:
		default:
			slog.Debug("key event buffer full, dropping event", "key", string(key))
		}
	}
}

// translateHookEvent normalizes a raw hook event to a Key.
func translateHookEvent(ev hook.Event) (Key, bool) {
	name := hook.RawcodetoKeychar(ev.Rawcode)
	if k, ok := hookNames[name]; ok {
		return k, true
	}
	if k, ok := ParseKey(name); ok {
		return k, true
	}
	if ev.Keychar != 0 {
		return ParseKey(string(ev.Keychar))
	}
	return "", false
}

// Events returns the translated key event stream.
func (h *HookSource) Events() <-chan Event { return h.events }

// Close uninstalls the global hook; the event channel closes once the
// hook loop drains.
func (h *HookSource) Close() error {
	h.closeOnce.Do(hook.End)
	return nil
}
