// AngelaMos | 2026
// store.go

// Package state provides a small observable value container. Consumers read
// the current snapshot and subscribe for change notifications; all mutation
// goes through Set or Update so every subscriber sees every change.
package state

import (
	"sync"
)

type Store[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]func(T)
	nextID int
}

func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current snapshot.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies every subscriber with the new
// snapshot. Callbacks run outside the lock so a subscriber may call Get or
// Subscribe without deadlocking.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Update applies fn to the current value under the lock and publishes the
// result.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	subs := make([]func(T), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(value)
	}
}

// Subscribe registers fn for every subsequent change and returns an
// unsubscribe function. It does not fire immediately; callers that need the
// current value read it with Get.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
