// Package stream provides push-based observable values.
//
// Subscribers receive values in emission order through a one-slot channel: a
// newer value replaces one the subscriber has not read yet, so a slow reader
// always sees the latest state and never blocks the publisher.
package stream

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Stream is anything that can be subscribed to. The returned cancel func
// stops delivery and closes the channel; it is safe to call more than once.
type Stream[T any] interface {
	Subscribe() (<-chan T, func())
}

// Subject is a Stream that remembers its latest value and replays it to new
// subscribers.
type Subject[T any] struct {
	mu    sync.Mutex
	value T
	has   bool
	subs  map[int]chan T
	next  int
}

// NewSubject returns a Subject with no value yet.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[int]chan T)}
}

// NewValue returns a Subject seeded with v.
func NewValue[T any](v T) *Subject[T] {
	s := NewSubject[T]()
	s.value = v
	s.has = true
	return s
}

// Publish stores v and delivers it to every subscriber.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.has = true
	for _, ch := range s.subs {
		Replace(ch, v)
	}
}

// Update applies fn to the current value under the subject's lock and
// publishes the result.
func (s *Subject[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	s.has = true
	for _, ch := range s.subs {
		Replace(ch, s.value)
	}
	return s.value
}

// Value returns the latest published value.
func (s *Subject[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}

func (s *Subject[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	if s.has {
		ch <- s.value
	}
	id := s.next
	s.next++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Subscribers reports how many subscriptions are active.
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Replace sends v on a one-slot channel, discarding an unread value first.
// Only one goroutine may send on ch.
func Replace[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// FetchFunc loads the current value of a watched query.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type watch[T any] struct {
	trigger Stream[uint64]
	fetch   FetchFunc[T]
	name    string
}

// Watch returns a Stream that runs fetch once per subscription and again
// every time trigger emits. Fetch errors are logged and skipped.
func Watch[T any](name string, trigger Stream[uint64], fetch FetchFunc[T]) Stream[T] {
	return watch[T]{trigger: trigger, fetch: fetch, name: name}
}

func (w watch[T]) Subscribe() (<-chan T, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan T, 1)
	ticks, stop := w.trigger.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case version, ok := <-ticks:
				if !ok {
					return
				}
				v, err := w.fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.WithFields(log.Fields{"watch": w.name, "version": version}).WithError(err).Error("watch fetch failed")
					continue
				}
				if ctx.Err() != nil {
					return
				}
				Replace(out, v)
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancel()
			stop()
			<-done
		})
	}
}
