// Package events carries every change notification in the dashboard over a
// single ordered channel: watcher output, tracker poll results, worker
// process updates. Producers publish concurrently; the update loop is the
// only consumer, so events for the same identifier always apply in arrival
// order. The package also provides a JSONL lifecycle log.
package events

import (
	"sync"
	"time"
)

// Msg is any event carried on the bus. Concrete types are defined by the
// producing packages; the consumer type-switches on them.
type Msg interface{}

// DefaultBufferSize bounds how many events can queue before publishers
// block. Blocking preserves ordering; events are never dropped.
const DefaultBufferSize = 1024

// Bus is a single-consumer event channel.
type Bus struct {
	ch     chan Msg
	mu     sync.Mutex
	closed bool
}

// NewBus creates a bus with the given buffer size (DefaultBufferSize if
// size <= 0).
func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Bus{ch: make(chan Msg, size)}
}

// Publish puts a message on the bus, blocking when the buffer is full.
// Publishing after Close is a no-op so producers can race shutdown safely.
func (b *Bus) Publish(msg Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	defer func() {
		// The channel may close between the check and the send.
		_ = recover()
	}()
	b.ch <- msg
}

// C returns the receive side. Only the update loop should read from it.
func (b *Bus) C() <-chan Msg {
	return b.ch
}

// Next blocks until a message arrives or the bus closes. ok is false once
// the bus is closed and drained.
func (b *Bus) Next() (Msg, bool) {
	msg, ok := <-b.ch
	return msg, ok
}

// Close stops the bus. Pending messages can still be drained by the
// consumer.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// TickMsg is the periodic redraw event. It shares the message queue with
// data events so redraws never interleave inside an update.
type TickMsg struct {
	At time.Time
}
