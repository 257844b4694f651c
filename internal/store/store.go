// Package store keeps the records one page fetched from the service.
package store

import "time"

// Store is the authoritative list of one entity type for a page. Order is
// whatever the service returned; views sort a copy.
type Store[T any] struct {
	items    []T
	loadedAt time.Time
	loaded   bool
	err      error
	now      func() time.Time
}

func New[T any]() *Store[T] {
	return &Store[T]{items: []T{}, now: time.Now}
}

// Replace swaps in a freshly fetched list and clears the last error.
func (s *Store[T]) Replace(items []T) {
	s.items = make([]T, len(items))
	copy(s.items, items)
	s.loadedAt = s.now()
	s.loaded = true
	s.err = nil
}

// Fail records a failed refresh. The previous items stay visible.
func (s *Store[T]) Fail(err error) { s.err = err }

func (s *Store[T]) Err() error { return s.err }

// Items returns a copy.
func (s *Store[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) Len() int { return len(s.items) }

// Loaded reports whether at least one fetch succeeded.
func (s *Store[T]) Loaded() bool { return s.loaded }

func (s *Store[T]) LoadedAt() time.Time { return s.loadedAt }
