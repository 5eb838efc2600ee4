package hotkey

import "testing"

type counters struct {
	starts, stops, toggles int
}

func newCountingTracker(ptt string, combo []string) (*Tracker, *counters) {
	c := &counters{}
	t := NewTracker(ptt, combo, Callbacks{
		OnPushToTalkStart: func() { c.starts++ },
		OnPushToTalkStop:  func() { c.stops++ },
		OnToggle:          func() { c.toggles++ },
	})
	return t, c
}

func press(t *Tracker, keys ...Key) {
	for _, k := range keys {
		t.Handle(Event{Key: k, Pressed: true})
	}
}

func release(t *Tracker, keys ...Key) {
	for _, k := range keys {
		t.Handle(Event{Key: k, Pressed: false})
	}
}

func TestPushToTalkEdgeTriggered(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	// Held key produces repeat press events; only the first fires.
	for i := 0; i < 10; i++ {
		press(tr, "f9")
	}
	if c.starts != 1 {
		t.Errorf("starts = %d, want 1 across repeat presses", c.starts)
	}

	release(tr, "f9")
	if c.stops != 1 {
		t.Errorf("stops = %d, want 1", c.stops)
	}

	// A fresh press/release cycle fires again.
	press(tr, "f9")
	release(tr, "f9")
	if c.starts != 2 || c.stops != 2 {
		t.Errorf("starts/stops = %d/%d, want 2/2", c.starts, c.stops)
	}
}

func TestPushToTalkReleaseWithoutPress(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	release(tr, "f9")
	if c.stops != 0 {
		t.Errorf("stops = %d, want 0 for release without press", c.stops)
	}
}

func TestNonPTTKeysIgnored(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	press(tr, "a", "f10", "ctrl_l")
	release(tr, "a", "f10", "ctrl_l")

	if c.starts != 0 || c.stops != 0 {
		t.Errorf("starts/stops = %d/%d, want 0/0", c.starts, c.stops)
	}
}

func TestComboLeftVariants(t *testing.T) {
	tr, c := newCountingTracker("f9", []string{"ctrl", "alt", "m"})

	press(tr, "ctrl_l", "alt_l", "m")
	if c.toggles != 1 {
		t.Errorf("toggles = %d, want 1", c.toggles)
	}
}

func TestComboRightVariants(t *testing.T) {
	tr, c := newCountingTracker("f9", []string{"ctrl", "alt", "m"})

	press(tr, "ctrl_r", "alt_r", "m")
	if c.toggles != 1 {
		t.Errorf("toggles = %d, want 1 with right-hand modifiers", c.toggles)
	}
}

func TestComboEdgeTriggered(t *testing.T) {
	tr, c := newCountingTracker("f9", []string{"ctrl", "alt", "m"})

	press(tr, "ctrl_l", "alt_l", "m")
	// Extra keystrokes while the combo stays held must not re-fire.
	press(tr, "x")
	press(tr, "m")
	if c.toggles != 1 {
		t.Errorf("toggles = %d, want 1 while combo held", c.toggles)
	}

	// Breaking and reforming the combo fires again.
	release(tr, "m")
	press(tr, "m")
	if c.toggles != 2 {
		t.Errorf("toggles = %d, want 2 after reforming combo", c.toggles)
	}
}

func TestComboIncomplete(t *testing.T) {
	tr, c := newCountingTracker("f9", []string{"ctrl", "alt", "m"})

	press(tr, "ctrl_l", "m")
	if c.toggles != 0 {
		t.Errorf("toggles = %d, want 0 without alt", c.toggles)
	}
}

func TestComboExactKeyEntry(t *testing.T) {
	// A combo can name a physical variant; the other variant must not
	// satisfy it.
	tr, c := newCountingTracker("f9", []string{"ctrl_l", "m"})

	press(tr, "ctrl_r", "m")
	if c.toggles != 0 {
		t.Errorf("toggles = %d, want 0 for wrong variant", c.toggles)
	}

	release(tr, "ctrl_r", "m")
	press(tr, "ctrl_l", "m")
	if c.toggles != 1 {
		t.Errorf("toggles = %d, want 1 for exact variant", c.toggles)
	}
}

func TestNoComboConfigured(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	press(tr, "ctrl_l", "alt_l", "m")
	if c.toggles != 0 {
		t.Errorf("toggles = %d, want 0 with no combo configured", c.toggles)
	}
}

func TestUpdatePTTKey(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	if ok := tr.UpdatePTTKey("F12"); !ok {
		t.Error("UpdatePTTKey(F12) = false, want true")
	}
	if tr.PTTKey() != "f12" {
		t.Errorf("PTTKey() = %q, want f12", tr.PTTKey())
	}

	press(tr, "f9")
	if c.starts != 0 {
		t.Error("old key still fires after update")
	}
	press(tr, "f12")
	if c.starts != 1 {
		t.Error("new key does not fire after update")
	}
	release(tr, "f12")
}

func TestUpdatePTTKeyFallback(t *testing.T) {
	tr, _ := newCountingTracker("f9", nil)

	if ok := tr.UpdatePTTKey("bogus"); ok {
		t.Error("UpdatePTTKey(bogus) = true, want false")
	}
	if tr.PTTKey() != DefaultPTTKey {
		t.Errorf("PTTKey() = %q, want default %q", tr.PTTKey(), DefaultPTTKey)
	}
}

func TestTrackerConstructionFallback(t *testing.T) {
	tr, _ := newCountingTracker("no_such_key", nil)
	if tr.PTTKey() != DefaultPTTKey {
		t.Errorf("PTTKey() = %q, want default %q", tr.PTTKey(), DefaultPTTKey)
	}
}

func TestResetHeld(t *testing.T) {
	tr, c := newCountingTracker("f9", []string{"ctrl", "m"})

	press(tr, "f9", "ctrl_l", "m")
	tr.ResetHeld()

	// After reset, the same combo must be able to fire again and PTT
	// state is cleared.
	press(tr, "ctrl_l", "m")
	if c.toggles != 2 {
		t.Errorf("toggles = %d, want 2 after reset", c.toggles)
	}
	press(tr, "f9")
	if c.starts != 2 {
		t.Errorf("starts = %d, want 2 after reset", c.starts)
	}
}

func TestRunConsumesSource(t *testing.T) {
	tr, c := newCountingTracker("f9", nil)

	ch := make(chan Event, 4)
	ch <- Event{Key: "f9", Pressed: true}
	ch <- Event{Key: "f9", Pressed: false}
	close(ch)

	tr.Run(chanSource(ch))

	if c.starts != 1 || c.stops != 1 {
		t.Errorf("starts/stops = %d/%d, want 1/1", c.starts, c.stops)
	}
}

type chanSource <-chan Event

func (c chanSource) Events() <-chan Event { return c }
func (c chanSource) Close() error         { return nil }
