package transcript

import (
	"strings"
	"testing"
	"time"
)

func TestStoreAdd(t *testing.T) {
	s := NewStore(30, 10)
	s.Add("hello world", "ptt", 1.5)

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "hello world" || entries[0].Mode != "ptt" || entries[0].Duration != 1.5 {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestStoreMaxSize(t *testing.T) {
	s := NewStore(5, 10)
	for i := 0; i < 10; i++ {
		s.Add("msg", "vad", 1)
	}

	if len(s.Entries()) != 5 {
		t.Errorf("expected 5 entries, got %d", len(s.Entries()))
	}
}

func TestGetRecent(t *testing.T) {
	s := NewStore(30, 10)
	s.Add("fresh words", "vad", 1)

	// Manually add an old entry
	s.mu.Lock()
	s.entries = append([]Entry{{
		Timestamp: time.Now().Add(-5 * time.Minute),
		Text:      "stale words",
		Mode:      "vad",
	}}, s.entries...)
	s.mu.Unlock()

	recent := s.GetRecent(60)
	if strings.Contains(recent, "stale words") {
		t.Error("should not contain old entry")
	}
	if !strings.Contains(recent, "fresh words") {
		t.Error("should contain recent entry")
	}
}

func TestEmit(t *testing.T) {
	s := NewStore(30, 10)
	go s.Emit(Event{Text: "test", Mode: "ptt"})

	select {
	case e := <-s.Events():
		if e.Text != "test" {
			t.Errorf("expected 'test', got %q", e.Text)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestEmitNonBlocking(t *testing.T) {
	s := NewStore(30, 1) // Small buffer

	s.Emit(Event{Text: "1", Mode: "vad"})

	// Buffer full; this must not block
	done := make(chan struct{})
	go func() {
		s.Emit(Event{Text: "2", Mode: "vad"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Emit blocked on a full buffer")
	}
}
