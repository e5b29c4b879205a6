// Package signal provides the reactive primitives the state cells are
// built from: Source, a mutable observed value, and Loader, a
// cancellable single-slot task runner with last-trigger-wins commit
// semantics.
//
// A cell owns one or more Sources for its state and subscribes to the
// Sources of the cells it depends on. Subscribers run synchronously, in
// subscription order, on the goroutine that published the new value;
// anything slow belongs in a Loader, not in a subscriber.
package signal

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Source holds one observed value. Zero value is not usable; construct
// with New.
type Source[T any] struct {
	mu    sync.Mutex
	value T
	subs  []subscriber[T]
	next  int
}

// New creates a Source seeded with initial. No notification is sent for
// the seed value.
func New[T any](initial T) *Source[T] {
	return &Source[T]{value: initial}
}

// Get returns the current value.
func (s *Source[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies subscribers in subscription order.
// Notification happens outside the lock, so a subscriber may read or set
// other sources (including this one) without deadlocking.
func (s *Source[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Update applies f to the current value under the lock and publishes the
// result exactly like Set.
func (s *Source[T]) Update(f func(T) T) {
	s.mu.Lock()
	s.value = f(s.value)
	v := s.value
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn for every subsequent Set/Update and returns an
// unsubscribe function. fn is not called with the current value; callers
// that need it read Get first.
func (s *Source[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
