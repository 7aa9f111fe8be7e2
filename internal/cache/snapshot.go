// Package cache provides the snapshot-swap cache both engine caches build on:
// a refresh assembles a complete replacement value off to the side, then
// publishes it with a single atomic pointer swap, so concurrent readers never
// observe a half-populated cache. Overlapping refreshes are safe; the later
// swap wins.
package cache

import (
	"sync/atomic"
	"time"
)

type entry[T any] struct {
	value       T
	refreshedAt time.Time
}

// Snapshot holds one immutable value with its refresh timestamp.
type Snapshot[T any] struct {
	current atomic.Pointer[entry[T]]
}

// NewSnapshot returns an empty, unpopulated snapshot.
func NewSnapshot[T any]() *Snapshot[T] {
	return &Snapshot[T]{}
}

// Get returns the held value and whether the snapshot has ever been populated.
func (s *Snapshot[T]) Get() (T, bool) {
	if e := s.current.Load(); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// RefreshedAt returns when the current value was published, zero if never.
func (s *Snapshot[T]) RefreshedAt() time.Time {
	if e := s.current.Load(); e != nil {
		return e.refreshedAt
	}
	return time.Time{}
}

// Stale reports whether the snapshot is unpopulated or older than ttl.
func (s *Snapshot[T]) Stale(ttl time.Duration) bool {
	e := s.current.Load()
	if e == nil {
		return true
	}
	return time.Since(e.refreshedAt) > ttl
}

// Replace publishes a new value. The value must not be mutated afterwards.
func (s *Snapshot[T]) Replace(value T) {
	s.current.Store(&entry[T]{value: value, refreshedAt: time.Now()})
}
