package notify

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/shadowslot/types"
)

// Broadcaster fans drained batches out to in-process subscribers.
//
// Delivery never blocks the flushing goroutine: a subscriber whose buffer is
// full misses the batch, and the drop is counted. Subscribers that must not
// miss changes should re-query the assignment after a drop.
type Broadcaster struct {
	subscribers *xsync.Map[uint64, *subscriber]
	nextID      atomic.Uint64
	buffer      int

	logger  types.Logger
	metrics types.MetricsCollector
}

var _ types.Dispatcher = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster with no subscribers.
//
// Parameters:
//   - opts: WithBuffer, WithLogger, WithMetrics
//
// Returns:
//   - *Broadcaster: Ready-to-use broadcaster
func NewBroadcaster(opts ...Option) *Broadcaster {
	o := newOptions(opts)

	return &Broadcaster{
		subscribers: xsync.NewMap[uint64, *subscriber](),
		buffer:      o.buffer,
		logger:      o.logger,
		metrics:     o.metrics,
	}
}

// Subscribe returns a channel receiving every delivered batch.
//
// Returns:
//   - <-chan []types.Notification: Buffered batch channel, closed on unsubscribe
//   - func(): Unsubscribe function; safe to call more than once
//
// Example:
//
//	ch, unsubscribe := b.Subscribe()
//	defer unsubscribe()
//	for batch := range ch {
//	    render(batch)
//	}
func (b *Broadcaster) Subscribe() (<-chan []types.Notification, func()) {
	id := b.nextID.Add(1)
	sub := &subscriber{ch: make(chan []types.Notification, b.buffer)}
	b.subscribers.Store(id, sub)

	unsubscribe := func() {
		if s, ok := b.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	return b.subscribers.Size()
}

// Dispatch hands a copy of batch to every subscriber.
func (b *Broadcaster) Dispatch(ctx context.Context, batch []types.Notification) error {
	if err := ctx.Err(); err != nil {
		b.metrics.RecordDispatch("broadcast", false)
		return err
	}

	b.subscribers.Range(func(id uint64, sub *subscriber) bool {
		if !sub.trySend(slices.Clone(batch)) {
			b.metrics.RecordDroppedNotification()
			b.logger.Debug("slotchange batch dropped for slow subscriber", "subscriber", id, "size", len(batch))
		}

		return true
	})
	b.metrics.RecordDispatch("broadcast", true)

	return nil
}

// Close unsubscribes everyone.
func (b *Broadcaster) Close() {
	b.subscribers.Range(func(id uint64, _ *subscriber) bool {
		if s, ok := b.subscribers.LoadAndDelete(id); ok {
			s.close()
		}

		return true
	})
}

type subscriber struct {
	ch     chan []types.Notification
	mu     sync.Mutex
	closed bool
}

// trySend reports false if the batch was dropped because the buffer is full.
func (s *subscriber) trySend(batch []types.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	select {
	case s.ch <- batch:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
