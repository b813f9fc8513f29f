// Package pubsub provides a small in-process publish/subscribe primitive for
// broadcasting service state (connectivity, sync status, session state).
//
// A Topic always holds a current value. New subscribers receive it
// immediately, so a listener never has to ask for the initial state
// separately. Publishing never blocks: each subscriber owns a bounded
// buffer and, when that buffer is full, the oldest undelivered value is
// dropped in favour of the new one.
package pubsub

import "sync"

// DefaultBuffer is the per-subscriber buffer size.
const DefaultBuffer = 16

// Topic broadcasts values of type T to its subscribers.
type Topic[T any] struct {
	mu          sync.Mutex
	current     T
	subscribers map[*Subscription[T]]struct{}
}

// Subscription is a handle returned by Subscribe. Read values from C.
type Subscription[T any] struct {
	C <-chan T

	ch chan T
}

// NewTopic returns a Topic whose current value is initial.
func NewTopic[T any](initial T) *Topic[T] {
	return &Topic[T]{
		current:     initial,
		subscribers: make(map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a new subscriber and replays the current value to it.
func (t *Topic[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, DefaultBuffer)
	s := &Subscription[T]{C: ch, ch: ch}

	t.mu.Lock()
	defer t.mu.Unlock()

	ch <- t.current
	t.subscribers[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel. Unsubscribing twice is a no-op.
func (t *Topic[T]) Unsubscribe(s *Subscription[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subscribers[s]; !ok {
		return
	}
	delete(t.subscribers, s)
	close(s.ch)
}

// Publish stores v as the current value and delivers it to every subscriber.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = v
	for s := range t.subscribers {
		deliver(s.ch, v)
	}
}

// Current returns the last published value.
func (t *Topic[T]) Current() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Len reports the number of active subscribers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribers)
}

func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		// Buffer full: drop the oldest value and retry.
		select {
		case <-ch:
		default:
		}
	}
}
