package store

import (
	"sync"
	"time"

	"creatorhub-realtime/internal/types"
)

// DefaultMaxEntries is the default retention ceiling of the store.
const DefaultMaxEntries = 50

// Notification is the classified, display-ready representation of a raw
// event. It is created exactly once at classification time; only the Read
// flag mutates afterwards.
type Notification struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Icon       string         `json:"icon"`
	Title      string         `json:"title"`
	Severity   types.Severity `json:"severity"`
	Message    string         `json:"message"`
	Payload    map[string]any `json:"payload,omitempty"`
	ReceivedAt time.Time      `json:"received_at"`
	Read       bool           `json:"read"`
}

// Store is an ordered, bounded collection of notifications with read/unread
// state. Entries are kept newest-first; once the retention ceiling is
// exceeded the oldest entry is evicted silently. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	entries    []Notification
	unread     int
	maxEntries int
	onChange   func()
}

// New creates a Store with the given retention ceiling. A ceiling of zero
// or less falls back to DefaultMaxEntries.
func New(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make([]Notification, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// OnChange registers a callback invoked after every mutation. The callback
// runs outside the store lock, so it may call back into the Store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Append prepends a notification and truncates to the retention ceiling.
func (s *Store) Append(n Notification) {
	s.mu.Lock()
	s.entries = append([]Notification{n}, s.entries...)
	if len(s.entries) > s.maxEntries {
		evicted := s.entries[s.maxEntries:]
		for _, e := range evicted {
			if !e.Read {
				s.unread--
			}
		}
		s.entries = s.entries[:s.maxEntries]
	}
	if !n.Read {
		s.unread++
	}
	s.mu.Unlock()
	s.notify()
}

// MarkRead flips the Read flag on the matching entry. An absent id is a
// no-op, not an error.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.entries {
		if s.entries[i].ID == id {
			if !s.entries[i].Read {
				s.entries[i].Read = true
				if s.unread > 0 {
					s.unread--
				}
				changed = true
			}
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// MarkAllRead flips Read on every entry and resets the unread counter.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	for i := range s.entries {
		s.entries[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()
	s.notify()
}

// Clear empties the collection and resets the unread counter.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0]
	s.unread = 0
	s.mu.Unlock()
	s.notify()
}

// Remove dismisses the matching entry. The unread counter is decremented
// only if the removed entry was unread.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.entries {
		if s.entries[i].ID == id {
			if !s.entries[i].Read && s.unread > 0 {
				s.unread--
			}
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			changed = true
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Notifications returns a snapshot of the collection, newest first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.entries))
	copy(out, s.entries)
	return out
}

// UnreadCount returns the number of entries with Read == false.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
