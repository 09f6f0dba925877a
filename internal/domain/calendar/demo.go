package calendar

import "sync"

// DemoStore keeps the event list of a calendar running without a backend.
// Concurrent requests each build their own View; Apply writes the result back.
type DemoStore struct {
	mu     sync.Mutex
	events []Event
}

// NewDemoStore seeds the store with events.
func NewDemoStore(seed []Event) *DemoStore {
	return &DemoStore{events: append([]Event(nil), seed...)}
}

// Events returns a snapshot of the stored list.
func (s *DemoStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Apply hands fn a copy of the stored list and stores what fn returns.
// The lock is held for the whole call so two demo edits never interleave.
func (s *DemoStore) Apply(fn func(events []Event) []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]Event(nil), fn(append([]Event(nil), s.events...))...)
}
