package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/shadowslot/internal/fingerprint"
	"github.com/arloliu/shadowslot/internal/kvutil"
	"github.com/arloliu/shadowslot/internal/natsutil"
	"github.com/arloliu/shadowslot/types"
)

// Snapshot is the value KVPublisher stores for one slot name.
type Snapshot struct {
	Name     string         `json:"name"`
	Slot     *types.NodeID  `json:"slot,omitempty"`
	Nodes    []types.NodeID `json:"nodes"`
	Version  int64          `json:"version"`
	Instance string         `json:"instance"`
}

// KVPublisher keeps the latest assignment of every changed slot name in a
// JetStream KV bucket under "<prefix>.<name key>".
//
// Each dispatched batch gets the next version number; all snapshots written
// by one batch share it. Versions stay monotonic across publisher restarts
// because DiscoverHighestVersion resumes from what the bucket holds.
type KVPublisher struct {
	kv       jetstream.KeyValue
	prefix   string
	instance string
	timeout  time.Duration

	mu      sync.Mutex
	version int64

	logger  types.Logger
	metrics types.MetricsCollector
}

var _ types.Dispatcher = (*KVPublisher)(nil)

// NewKVPublisher ensures bucket exists and creates a publisher writing to it.
//
// Parameters:
//   - ctx: Context for bucket creation and version discovery
//   - js: JetStream context
//   - bucket: Bucket name
//   - opts: WithKeyPrefix, WithTimeout, WithMaxRetries, WithInstanceID, WithLogger, WithMetrics
//
// Returns:
//   - *KVPublisher: Publisher resuming from the highest stored version
//   - error: Bucket or discovery error
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	pub, err := notify.NewKVPublisher(ctx, js, cfg.Publish.KVBucket, notify.WithKeyPrefix("card-42"))
func NewKVPublisher(ctx context.Context, js jetstream.JetStream, bucket string, opts ...Option) (*KVPublisher, error) {
	if js == nil {
		return nil, types.ErrNATSConnectionRequired
	}
	o := newOptions(opts)

	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.SnapshotBucketConfig(bucket), o.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}

	p := newKVPublisher(kv, o)
	if err := p.DiscoverHighestVersion(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// NewKVPublisherForBucket creates a publisher writing to an already opened bucket.
// It starts at version 0; call DiscoverHighestVersion to resume.
func NewKVPublisherForBucket(kv jetstream.KeyValue, opts ...Option) *KVPublisher {
	return newKVPublisher(kv, newOptions(opts))
}

func newKVPublisher(kv jetstream.KeyValue, o options) *KVPublisher {
	if o.instanceID == "" {
		o.instanceID = uuid.NewString()
	}

	return &KVPublisher{
		kv:       kv,
		prefix:   o.keyPrefix,
		instance: o.instanceID,
		timeout:  o.timeout,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Key returns the KV key holding name's snapshot.
func (p *KVPublisher) Key(name string) string {
	return p.prefix + "." + fingerprint.NameKey(name)
}

// Version returns the version of the last dispatched batch.
func (p *KVPublisher) Version() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.version
}

// DiscoverHighestVersion scans the bucket for the highest stored version
// under this publisher's prefix and continues from it.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Nil on success, error on KV access failure
func (p *KVPublisher) DiscoverHighestVersion(ctx context.Context) error {
	keys, err := kvutil.KeysWithPrefix(ctx, p.kv, p.prefix)
	if err != nil {
		return fmt.Errorf("discover snapshot version: %w", err)
	}

	highest := int64(0)
	for _, key := range keys {
		snap, err := p.get(ctx, key)
		if err != nil {
			p.logger.Debug("skipping unreadable snapshot", "key", key, "error", err)
			continue
		}
		highest = max(highest, snap.Version)
	}

	p.mu.Lock()
	p.version = max(p.version, highest)
	p.mu.Unlock()

	if highest > 0 {
		p.logger.Info("resuming snapshot versions", "prefix", p.prefix, "highest_version", highest, "checked_keys", len(keys))
	}

	return nil
}

// Dispatch writes one snapshot per notification.
//
// Every snapshot is attempted even when some fail; failures are joined.
func (p *KVPublisher) Dispatch(ctx context.Context, batch []types.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	version := p.version + 1

	ctx, span := otel.Tracer(tracerName).Start(ctx, "notify.KVPublisher.Dispatch",
		trace.WithAttributes(
			attribute.String("bucket", p.kv.Bucket()),
			attribute.Int("notifications", len(batch)),
			attribute.Int64("version", version),
		),
	)
	defer span.End()

	opCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var errs []error
	for _, n := range batch {
		if err := p.put(opCtx, n, version); err != nil {
			errs = append(errs, fmt.Errorf("slot %q: %w", n.Name, err))
		}
	}
	// Consumed even on partial failure: some snapshots already carry it.
	p.version = version

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot put failed")
		p.metrics.RecordDispatch("kv", false)
		natsutil.LogPublishError(p.logger, "assignment snapshot failed", err, "bucket", p.kv.Bucket(), "version", version)

		return fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}
	p.metrics.RecordDispatch("kv", true)

	return nil
}

func (p *KVPublisher) put(ctx context.Context, n types.Notification, version int64) error {
	pl := payloadOf(n)
	data, err := json.Marshal(Snapshot{
		Name:     pl.Name,
		Slot:     pl.Slot,
		Nodes:    pl.Nodes,
		Version:  version,
		Instance: p.instance,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = p.kv.Put(ctx, p.Key(n.Name), data)

	return err
}

// Get returns the stored snapshot of name.
//
// Returns:
//   - Snapshot: Latest snapshot
//   - error: jetstream.ErrKeyNotFound if name was never published
func (p *KVPublisher) Get(ctx context.Context, name string) (Snapshot, error) {
	return p.get(ctx, p.Key(name))
}

func (p *KVPublisher) get(ctx context.Context, key string) (Snapshot, error) {
	entry, err := p.kv.Get(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(entry.Value(), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", key, err)
	}

	return snap, nil
}

// Cleanup deletes every snapshot under this publisher's prefix.
//
// Call it when the shadow tree is discarded. Individual delete failures are
// logged and skipped.
//
// Returns:
//   - int: Number of deleted snapshots
//   - error: Listing error
func (p *KVPublisher) Cleanup(ctx context.Context) (int, error) {
	keys, err := kvutil.KeysWithPrefix(ctx, p.kv, p.prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := p.kv.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to delete snapshot", "key", key, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		p.logger.Info("cleaned up assignment snapshots", "prefix", p.prefix, "deleted_count", deleted)
	}

	return deleted, nil
}
