// Package transcript handles in-memory transcript storage and fan-out
// of transcription events.
package transcript

import (
	"strings"
	"sync"
	"time"
)

// Event is one transcription result pushed to subscribers.
type Event struct {
	Text     string  `json:"text"`
	Mode     string  `json:"mode"` // "vad" or "ptt"
	Duration float64 `json:"duration_sec"`
}

// Entry is a stored transcription.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Mode      string    `json:"mode"`
	Duration  float64   `json:"duration_sec"`
}

// Store interface for transcript operations.
type Store interface {
	Add(text, mode string, duration float64)
	GetRecent(seconds int) string
	Entries() []Entry
	Events() <-chan Event
	Emit(event Event)
}

// MemoryStore implements bounded in-memory transcript storage.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	maxSize  int
	eventsCh chan Event
}

// NewStore creates a transcript store keeping at most maxEntries.
func NewStore(maxEntries, eventBuffer int) *MemoryStore {
	return &MemoryStore{
		entries:  make([]Entry, 0, maxEntries),
		maxSize:  maxEntries,
		eventsCh: make(chan Event, eventBuffer),
	}
}

// Add stores a new transcript entry, evicting the oldest past the cap.
func (s *MemoryStore) Add(text, mode string, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp: time.Now(),
		Text:      text,
		Mode:      mode,
		Duration:  duration,
	})

	if len(s.entries) > s.maxSize {
		s.entries = s.entries[len(s.entries)-s.maxSize:]
	}
}

// GetRecent returns the concatenated text from the last N seconds.
func (s *MemoryStore) GetRecent(seconds int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-time.Duration(seconds) * time.Second)
	var parts []string
	for _, e := range s.entries {
		if !e.Timestamp.Before(cutoff) {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Entries returns a copy of all stored entries, oldest first.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Events returns the channel for transcript events.
func (s *MemoryStore) Events() <-chan Event {
	return s.eventsCh
}

// Emit sends a transcript event (non-blocking).
func (s *MemoryStore) Emit(event Event) {
	select {
	case s.eventsCh <- event:
	default:
	}
}
