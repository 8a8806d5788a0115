package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/notify"
	"github.com/arloliu/shadowslot/types"
)

// Default retry tuning for Start.
const (
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 50 * time.Millisecond
	DefaultRetryMaxBackoff = time.Second
	retryMultiplier        = 1.6
)

// ErrWatcherStarted is returned by Start on a running watcher.
var ErrWatcherStarted = errors.New("watcher already started")

// Batch is one decoded slotchange message.
type Batch struct {
	notify.Message

	// Missed counts batches from the same instance that were never received
	// between the previous batch and this one.
	Missed uint64
}

// Handler processes received batches.
type Handler interface {
	Handle(ctx context.Context, b Batch) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, b Batch) error

// Handle calls f(ctx, b).
func (f HandlerFunc) Handle(ctx context.Context, b Batch) error {
	return f(ctx, b)
}

// Config configures a Watcher.
type Config struct {
	// Subject to subscribe to. Wildcards are allowed.
	Subject string

	// QueueGroup, when set, load-balances batches across watchers in the group.
	QueueGroup string

	// MaxRetries bounds subscribe attempts in Start after the first one.
	MaxRetries int

	// RetryBackoff is the first retry delay; RetryMaxBackoff caps it.
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration

	// RetrySeed makes retry jitter reproducible when non-zero.
	RetrySeed int64

	Logger types.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.RetryMaxBackoff == 0 {
		cfg.RetryMaxBackoff = DefaultRetryMaxBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
}

// Watcher receives slotchange batches from NATS.
type Watcher struct {
	nc      *nats.Conn
	cfg     Config
	handler Handler

	mu       sync.Mutex
	sub      *nats.Subscription
	starting bool
	ctx      context.Context //nolint:containedctx // handler context for the async subscription
	cancel   context.CancelFunc
	lastSeq  map[string]uint64
}

// NewWatcher creates a watcher. It does not subscribe until Start.
//
// Returns:
//   - types.ErrNATSConnectionRequired if nc is nil
//   - nats.ErrBadSubject if cfg.Subject is empty
//   - types.ErrHandlerRequired if handler is nil
func NewWatcher(nc *nats.Conn, cfg Config, handler Handler) (*Watcher, error) {
	if nc == nil {
		return nil, types.ErrNATSConnectionRequired
	}
	if cfg.Subject == "" {
		return nil, nats.ErrBadSubject
	}
	if handler == nil {
		return nil, types.ErrHandlerRequired
	}
	cfg.applyDefaults()

	return &Watcher{
		nc:      nc,
		cfg:     cfg,
		handler: handler,
		lastSeq: make(map[string]uint64),
	}, nil
}

// Start subscribes, retrying with jittered backoff. ctx bounds both the
// retries and every handler call made afterwards.
//
// The watcher is not locked while waiting between attempts; a concurrent
// Stop aborts the pending retries and Start returns context.Canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.sub != nil || w.starting {
		w.mu.Unlock()
		return ErrWatcherStarted
	}
	hctx, cancel := context.WithCancel(ctx)
	w.ctx = hctx
	w.cancel = cancel
	w.starting = true
	w.mu.Unlock()

	retry := newRetrier(w.cfg.RetryBackoff, w.cfg.RetryMaxBackoff, retryMultiplier, w.cfg.RetrySeed)
	var lastErr error
	for attempt := 0; attempt <= w.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retry.next()
			w.cfg.Logger.Debug("retrying subscribe", "subject", w.cfg.Subject, "attempt", attempt, "delay", delay)

			select {
			case <-hctx.Done():
				return w.abortStart(hctx.Err())
			case <-time.After(delay):
			}
		}

		w.mu.Lock()
		if err := hctx.Err(); err != nil {
			w.mu.Unlock()
			return w.abortStart(err)
		}
		sub, err := w.subscribe()
		if err == nil {
			w.sub = sub
			w.starting = false
			w.mu.Unlock()
			w.cfg.Logger.Info("watching slotchange batches", "subject", w.cfg.Subject, "queue", w.cfg.QueueGroup)

			return nil
		}
		w.mu.Unlock()
		lastErr = err
	}

	return w.abortStart(fmt.Errorf("subscribe %q: %w", w.cfg.Subject, lastErr))
}

// abortStart resets a failed Start and returns err.
func (w *Watcher) abortStart(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.starting = false
	w.cancel()

	return err
}

func (w *Watcher) subscribe() (*nats.Subscription, error) {
	if w.cfg.QueueGroup != "" {
		return w.nc.QueueSubscribe(w.cfg.Subject, w.cfg.QueueGroup, w.onMessage)
	}

	return w.nc.Subscribe(w.cfg.Subject, w.onMessage)
}

// Stop unsubscribes, or aborts a Start that is still retrying. Calling Stop
// on a watcher that is neither running nor starting returns
// types.ErrSubscriberClosed.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.starting {
		w.cancel()
		return nil
	}
	if w.sub == nil {
		return types.ErrSubscriberClosed
	}
	err := w.sub.Unsubscribe()
	w.sub = nil
	w.cancel()

	return err
}

func (w *Watcher) onMessage(msg *nats.Msg) {
	var m notify.Message
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		w.cfg.Logger.Warn("dropping undecodable slotchange message", "subject", msg.Subject, "error", err)
		return
	}

	missed, fresh := w.observe(m.Instance, m.Sequence)
	if !fresh {
		w.cfg.Logger.Debug("dropping redelivered batch", "instance", m.Instance, "sequence", m.Sequence)
		return
	}
	if missed > 0 {
		w.cfg.Logger.Warn("slotchange batches lost", "instance", m.Instance, "missed", missed)
	}

	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	if err := w.handler.Handle(ctx, Batch{Message: m, Missed: missed}); err != nil {
		w.cfg.Logger.Error("slotchange handler failed", "instance", m.Instance, "sequence", m.Sequence, "error", err)
	}
}

// observe records seq for instance. It reports how many sequences were
// skipped and whether seq is newer than anything seen before.
func (w *Watcher) observe(instance string, seq uint64) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	last, seen := w.lastSeq[instance]
	if seen && seq <= last {
		return 0, false
	}
	w.lastSeq[instance] = seq
	if !seen {
		return 0, true
	}

	return seq - last - 1, true
}

// LastSequence returns the newest sequence received from instance.
func (w *Watcher) LastSequence(instance string) (uint64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seq, ok := w.lastSeq[instance]

	return seq, ok
}
