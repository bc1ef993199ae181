package sse

import "sync"

// bus fans each published message out to every registered subscriber, and remembers
// the most recent messages so that reconnecting clients can catch up
type bus[T any] struct {
	mu      sync.Mutex
	subs    map[chan T]struct{}
	recent  []T
	backlog int
}

func newBus[T any](backlog int) *bus[T] {
	return &bus[T]{
		subs:    make(map[chan T]struct{}),
		backlog: backlog,
	}
}

// subscribe registers ch and returns a snapshot of the recent messages, taken
// atomically so that no message is both replayed and delivered
func (b *bus[T]) subscribe(ch chan T) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return append([]T(nil), b.recent...)
}

func (b *bus[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, ch)
}

func (b *bus[T]) numSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// publish delivers message to every subscriber that has room for it: a client that
// can't keep up misses messages rather than stalling everyone else
func (b *bus[T]) publish(message T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.backlog > 0 {
		if len(b.recent) == b.backlog {
			b.recent = append(b.recent[:0], b.recent[1:]...)
		}
		b.recent = append(b.recent, message)
	}
	for ch := range b.subs {
		select {
		case ch <- message:
		default:
		}
	}
}

// close drops every subscriber; their handlers notice via the handler context
func (b *bus[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.subs)
}
