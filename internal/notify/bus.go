// Package notify carries "state changed" hints from the directory and tile
// cache to whoever renders them.
//
// Publishing never blocks. When a subscriber's buffer is full the event is
// dropped and counted; subscribers re-read component state on every event they
// do receive, so a dropped hint is covered by the one still pending.
package notify

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/glabrego/photowall-cli/internal/grid"
)

var (
	ErrBusClosed          = errors.New("notify: bus closed")
	ErrSubscriberExists   = errors.New("notify: subscriber already registered")
	ErrSubscriberNotFound = errors.New("notify: subscriber not found")
)

type Kind int

const (
	PostsUpdated Kind = iota + 1
	PostsDone
	TileLoaded
	TileFailed
)

func (k Kind) String() string {
	switch k {
	case PostsUpdated:
		return "posts_updated"
	case PostsDone:
		return "posts_done"
	case TileLoaded:
		return "tile_loaded"
	case TileFailed:
		return "tile_failed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind Kind
	Key  grid.Key
}

type Stats struct {
	Sent    uint64
	Dropped uint64
}

type subscriber struct {
	ch      chan Event
	sent    atomic.Uint64
	dropped atomic.Uint64
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]*subscriber)}
}

func (b *Bus) Subscribe(id string, buffer int) (<-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.subs[id]; exists {
		return nil, ErrSubscriberExists
	}
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Event, buffer)}
	b.subs[id] = sub
	return sub.ch, nil
}

func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return ErrSubscriberNotFound
	}
	delete(b.subs, id)
	close(sub.ch)
	return nil
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			sub.sent.Add(1)
		default:
			sub.dropped.Add(1)
		}
	}
}

func (b *Bus) Stats(id string) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, ok := b.subs[id]
	if !ok {
		return Stats{}, ErrSubscriberNotFound
	}
	return Stats{Sent: sub.sent.Load(), Dropped: sub.dropped.Load()}, nil
}

// Close closes every subscriber channel. Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Drain empties ch without blocking and reports what it saw. ok is false once
// the channel has been closed.
func Drain(ch <-chan Event) (events []Event, ok bool) {
	for {
		select {
		case ev, open := <-ch:
			if !open {
				return events, false
			}
			events = append(events, ev)
		default:
			return events, true
		}
	}
}
