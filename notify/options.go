package notify

import (
	"time"

	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/types"
)

// Defaults for dispatcher options.
const (
	DefaultTimeout    = 5 * time.Second
	DefaultBuffer     = 16
	DefaultKeyPrefix  = "slot"
	DefaultMaxRetries = 3
)

// Option configures a dispatcher. Options a dispatcher has no use for are ignored.
type Option func(*options)

type options struct {
	logger     types.Logger
	metrics    types.MetricsCollector
	timeout    time.Duration
	instanceID string
	keyPrefix  string
	buffer     int
	maxRetries int
}

func newOptions(opts []Option) options {
	o := options{
		timeout:    DefaultTimeout,
		keyPrefix:  DefaultKeyPrefix,
		buffer:     DefaultBuffer,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return o
}

// WithLogger sets the logger.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTimeout bounds each publish or KV operation.
//
// Parameters:
//   - d: Per-operation timeout (<= 0 keeps DefaultTimeout)
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithInstanceID tags published messages with the publishing process.
// A random UUID is used when unset.
func WithInstanceID(id string) Option {
	return func(o *options) {
		o.instanceID = id
	}
}

// WithKeyPrefix sets the KV key prefix. Shadow trees sharing one bucket
// need distinct prefixes.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

// WithBuffer sets the channel capacity of each Broadcaster subscription.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithMaxRetries sets how often KVPublisher retries creating its bucket.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}
