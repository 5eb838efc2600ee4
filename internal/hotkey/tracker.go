package hotkey

import (
	"log/slog"
	"sync"
)

// Event is one key transition from a raw input source.
type Event struct {
	Key     Key
	Pressed bool
}

// Source delivers raw key events. Events() is closed when the source
// shuts down.
type Source interface {
	Events() <-chan Event
	Close() error
}

// Callbacks fire synchronously on the listener goroutine and must not
// block.
type Callbacks struct {
	OnPushToTalkStart func()
	OnPushToTalkStop  func()
	OnToggle          func()
}

// Tracker maintains the held-key set and emits edge-triggered
// push-to-talk and toggle signals. Key-repeat press events while a
// key is already held fire nothing.
type Tracker struct {
	cb Callbacks

	mu             sync.Mutex
	pttKey         Key
	combo          []Key
	held           map[Key]bool
	pttActive      bool
	comboSatisfied bool
}

// NewTracker builds a tracker. An unrecognized pttKey string falls
// back to DefaultPTTKey with a warning.
func NewTracker(pttKey string, combo []string, cb Callbacks) *Tracker {
	key, ok := ParsePTTKey(pttKey)
	if !ok {
		slog.Warn("unrecognized push-to-talk key, using default", "requested", pttKey, "default", string(DefaultPTTKey))
	}
	return &Tracker{
		cb:     cb,
		pttKey: key,
		combo:  ParseCombo(combo),
		held:   make(map[Key]bool),
	}
}

// PTTKey returns the active push-to-talk key.
func (t *Tracker) PTTKey() Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pttKey
}

// UpdatePTTKey changes the push-to-talk key at runtime. Unrecognized
// names keep the fallback default and return false.
func (t *Tracker) UpdatePTTKey(name string) bool {
	key, ok := ParsePTTKey(name)
	t.mu.Lock()
	t.pttKey = key
	t.mu.Unlock()
	if ok {
		slog.Info("push-to-talk key changed", "key", string(key))
	} else {
		slog.Warn("unrecognized push-to-talk key, using default", "requested", name, "default", string(DefaultPTTKey))
	}
	return ok
}

// Run consumes events until the source channel closes.
func (t *Tracker) Run(src Source) {
	for ev := range src.Events() {
		t.Handle(ev)
	}
}

// Handle processes one key transition.
func (t *Tracker) Handle(ev Event) {
	t.mu.Lock()

	var fire []func()
	if ev.Pressed {
		if ev.Key == t.pttKey && !t.pttActive {
			t.pttActive = true
			fire = append(fire, t.cb.OnPushToTalkStart)
		}
		t.held[ev.Key] = true

		if t.comboMatchedLocked() {
			if !t.comboSatisfied {
				t.comboSatisfied = true
				fire = append(fire, t.cb.OnToggle)
			}
		} else {
			t.comboSatisfied = false
		}
	} else {
		if ev.Key == t.pttKey && t.pttActive {
			t.pttActive = false
			fire = append(fire, t.cb.OnPushToTalkStop)
		}
		delete(t.held, ev.Key)

		if !t.comboMatchedLocked() {
			t.comboSatisfied = false
		}
	}

	t.mu.Unlock()

	for _, fn := range fire {
		if fn != nil {
			fn()
		}
	}
}

// ResetHeld clears the held-key set, used when the raw input source
// restarts and release events may have been lost.
func (t *Tracker) ResetHeld() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.held = make(map[Key]bool)
	t.pttActive = false
	t.comboSatisfied = false
}

// comboMatchedLocked reports whether every combo entry is present in
// the held set, with modifier roles matching any physical variant.
func (t *Tracker) comboMatchedLocked() bool {
	if len(t.combo) == 0 {
		return false
	}
	for _, want := range t.combo {
		if t.held[want] {
			continue
		}
		role := want.Role()
		if role == "" {
			return false
		}
		found := false
		for held := range t.held {
			if held.Role() == role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
