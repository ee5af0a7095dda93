package queue

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned when operations are attempted on a closed channel
	ErrClosed = errors.New("channel is closed")
)

// Channel is an ordered pipe from any number of producers to a single
// consumer. Sends are totally ordered by a ticket taken when Send is called,
// and a Send only makes its next value visible once the previous one has been
// taken by a receiver.
type Channel[T any] struct {
	mu sync.Mutex

	// Values buffered for a receiver. Sends are serialized and each one
	// waits for its value to be taken, so this holds at most one entry.
	pending []*pendingValue[T]

	// Receivers blocked in Receive, oldest first
	receivers []*waitingReceiver[T]

	// Send ordering
	nextTicket uint64              // ticket handed to the next Send call
	serving    uint64              // ticket currently allowed to publish
	abandoned  map[uint64]struct{} // tickets whose Send gave up before its turn
	turn       chan struct{}       // closed and replaced whenever serving advances

	// State
	closed bool
	done   chan struct{}
	stats  Stats
}

// pendingValue is a buffered value together with the signal its sender
// waits on.
type pendingValue[T any] struct {
	value T
	taken chan struct{}
}

// waitingReceiver is a Receive call parked until a value is handed to it.
type waitingReceiver[T any] struct {
	value chan T // buffered, written at most once under the channel lock
}

// Stats tracks channel counters.
type Stats struct {
	Sent      int64 // Values accepted from Send calls
	Delivered int64 // Values returned by Receive
	HandedOff int64 // Values given straight to a waiting receiver
	Withdrawn int64 // Buffered values pulled back by a canceled Send
	Dropped   int64 // Buffered values discarded by Close
}

// New creates an open channel.
func New[T any]() *Channel[T] {
	return &Channel[T]{
		abandoned: make(map[uint64]struct{}),
		turn:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Send publishes values in order and returns once every one of them has been
// taken by a receiver. Values handed directly to a waiting receiver count as
// taken immediately. Sending nothing is a no-op on an open channel.
//
// If ctx is canceled the values not yet taken are abandoned and ctx.Err() is
// returned; values already taken stay delivered.
func (c *Channel[T]) Send(ctx context.Context, values ...T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if len(values) == 0 {
		c.mu.Unlock()
		return nil
	}
	ticket := c.nextTicket
	c.nextTicket++
	c.mu.Unlock()

	if err := c.awaitTurn(ctx, ticket); err != nil {
		return err
	}
	defer c.release()

	for _, v := range values {
		if err := c.put(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// awaitTurn blocks until ticket is the one being served.
func (c *Channel[T]) awaitTurn(ctx context.Context, ticket uint64) error {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		if c.serving == ticket {
			c.mu.Unlock()
			return nil
		}
		turn := c.turn
		c.mu.Unlock()

		select {
		case <-turn:
		case <-c.done:
		case <-ctx.Done():
			c.mu.Lock()
			if c.serving == ticket {
				// The turn arrived while we were giving up, pass it on.
				c.advanceLocked()
			} else {
				c.abandoned[ticket] = struct{}{}
			}
			c.mu.Unlock()
			return ctx.Err()
		}
	}
}

// release hands the turn to the next live ticket.
func (c *Channel[T]) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked()
}

func (c *Channel[T]) advanceLocked() {
	c.serving++
	for {
		if _, ok := c.abandoned[c.serving]; !ok {
			break
		}
		delete(c.abandoned, c.serving)
		c.serving++
	}
	close(c.turn)
	c.turn = make(chan struct{})
}

// put delivers a single value and waits until it has been taken.
func (c *Channel[T]) put(ctx context.Context, v T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.stats.Sent++

	if len(c.receivers) > 0 {
		r := c.receivers[0]
		c.receivers[0] = nil
		c.receivers = c.receivers[1:]
		r.value <- v
		c.stats.HandedOff++
		c.stats.Delivered++
		c.mu.Unlock()
		return nil
	}

	p := &pendingValue[T]{value: v, taken: make(chan struct{})}
	c.pending = append(c.pending, p)
	c.mu.Unlock()

	select {
	case <-p.taken:
		return nil
	case <-c.done:
		select {
		case <-p.taken:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		c.mu.Lock()
		defer c.mu.Unlock()
		select {
		case <-p.taken:
			return nil
		default:
		}
		if c.removePendingLocked(p) {
			c.stats.Withdrawn++
		}
		return ctx.Err()
	}
}

// Receive blocks until a value is available and returns it. It fails with
// ErrClosed if the channel is closed before a value arrives.
func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	if len(c.pending) > 0 {
		p := c.pending[0]
		c.pending[0] = nil
		c.pending = c.pending[1:]
		close(p.taken)
		c.stats.Delivered++
		c.mu.Unlock()
		return p.value, nil
	}
	r := &waitingReceiver[T]{value: make(chan T, 1)}
	c.receivers = append(c.receivers, r)
	c.mu.Unlock()

	select {
	case v := <-r.value:
		return v, nil
	case <-c.done:
		// A handoff that happened before Close still counts.
		select {
		case v := <-r.value:
			return v, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.removeReceiverLocked(r) {
			return zero, ctx.Err()
		}
		select {
		case v := <-r.value:
			return v, nil
		default:
			return zero, ErrClosed
		}
	}
}

func (c *Channel[T]) removePendingLocked(p *pendingValue[T]) bool {
	for i, candidate := range c.pending {
		if candidate == p {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Channel[T]) removeReceiverLocked(r *waitingReceiver[T]) bool {
	for i, candidate := range c.receivers {
		if candidate == r {
			c.receivers = append(c.receivers[:i], c.receivers[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a sequence that receives values until the channel is closed or
// ctx is done. Each call returns a new sequence; a sequence can only be
// ranged over once.
func (c *Channel[T]) All(ctx context.Context) iter.Seq[T] {
	var used atomic.Bool
	return func(yield func(T) bool) {
		if used.Swap(true) {
			return
		}
		for {
			v, err := c.Receive(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Close marks the channel closed and wakes every waiting sender and
// receiver with ErrClosed. Buffered values that were not taken are dropped.
// Calling Close more than once has no further effect.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	c.stats.Dropped += int64(len(c.pending))
	c.pending = nil
	c.receivers = nil

	return nil
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Done returns a channel that is closed when the Channel is closed.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.done
}

// Len returns the number of values buffered but not yet received.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stats returns a snapshot of the channel counters.
func (c *Channel[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
