package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/shadowslot/internal/natsutil"
	"github.com/arloliu/shadowslot/types"
)

const tracerName = "github.com/arloliu/shadowslot/notify"

// Header names set on every published message.
const (
	HeaderInstance = "Shadowslot-Instance"
	HeaderSequence = "Shadowslot-Sequence"
)

// NATSPublisher publishes each drained batch as one JSON Message on a core
// NATS subject.
//
// Every message carries a unique Nats-Msg-Id header so a JetStream stream
// capturing the subject deduplicates redeliveries.
type NATSPublisher struct {
	nc       *nats.Conn
	subject  string
	instance string
	timeout  time.Duration
	sequence atomic.Uint64

	logger  types.Logger
	metrics types.MetricsCollector
}

var _ types.Dispatcher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a publisher for subject.
//
// Parameters:
//   - nc: NATS connection
//   - subject: Subject to publish on
//   - opts: WithLogger, WithMetrics, WithTimeout, WithInstanceID
//
// Returns:
//   - *NATSPublisher: Ready-to-use publisher
//   - error: ErrNATSConnectionRequired, or an invalid subject error
func NewNATSPublisher(nc *nats.Conn, subject string, opts ...Option) (*NATSPublisher, error) {
	if nc == nil {
		return nil, types.ErrNATSConnectionRequired
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", nats.ErrBadSubject)
	}
	o := newOptions(opts)
	if o.instanceID == "" {
		o.instanceID = uuid.NewString()
	}

	return &NATSPublisher{
		nc:       nc,
		subject:  subject,
		instance: o.instanceID,
		timeout:  o.timeout,
		logger:   o.logger,
		metrics:  o.metrics,
	}, nil
}

// Subject returns the subject batches are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Instance returns the instance ID stamped on every message.
func (p *NATSPublisher) Instance() string {
	return p.instance
}

// Dispatch publishes batch and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Dispatch(ctx context.Context, batch []types.Notification) error {
	seq := p.sequence.Add(1)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "notify.NATSPublisher.Dispatch",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("subject", p.subject),
			attribute.Int("notifications", len(batch)),
			attribute.Int64("sequence", int64(seq)), //nolint:gosec // sequence never reaches 2^63
		),
	)
	defer span.End()

	if err := p.publish(ctx, seq, batch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		p.metrics.RecordDispatch("nats", false)
		natsutil.LogPublishError(p.logger, "slotchange publish failed", err, "subject", p.subject, "sequence", seq)

		return fmt.Errorf("%w: subject %s: %w", types.ErrPublishFailed, p.subject, err)
	}
	p.metrics.RecordDispatch("nats", true)
	p.logger.Debug("slotchange batch published", "subject", p.subject, "sequence", seq, "size", len(batch))

	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, seq uint64, batch []types.Notification) error {
	msg := Message{
		Instance:      p.instance,
		Sequence:      seq,
		Notifications: make([]Payload, len(batch)),
	}
	for i, n := range batch {
		msg.Notifications[i] = payloadOf(n)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	out := nats.NewMsg(p.subject)
	out.Data = data
	out.Header.Set(nats.MsgIdHdr, uuid.NewString())
	out.Header.Set(HeaderInstance, p.instance)
	out.Header.Set(HeaderSequence, strconv.FormatUint(seq, 10))

	if err := p.nc.PublishMsg(out); err != nil {
		return err
	}

	flushCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.nc.FlushWithContext(flushCtx)
}
