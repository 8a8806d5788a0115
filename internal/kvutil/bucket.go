// Package kvutil manages the JetStream KV buckets assignment snapshots live in.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// SnapshotBucketConfig returns the bucket configuration for assignment snapshots.
//
// Only the latest snapshot per key is kept; snapshots never expire because a
// consumer joining late must still see the current assignment.
//
// Parameters:
//   - bucket: Bucket name
//
// Returns:
//   - jetstream.KeyValueConfig: Configuration for EnsureBucket
func SnapshotBucketConfig(bucket string) jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "shadowslot assignment snapshots",
		History:     1,
	}
}

// EnsureBucket creates or opens a KV bucket, retrying transient failures.
//
// Several processes may publish snapshots into one bucket, so the bucket can
// appear between a failed lookup and a create; ErrBucketExists therefore
// opens the existing bucket. Other failures are retried with exponential
// backoff (10ms, 20ms, 40ms, ...) until maxRetries attempts were made or ctx
// is done.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - cfg: KV bucket configuration
//   - maxRetries: Maximum number of attempts (<= 0 means 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: Last error after all attempts
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.SnapshotBucketConfig("shadowslot-assignments"), 3)
func EnsureBucket(
	ctx context.Context,
	js jetstream.JetStream,
	cfg jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := range maxRetries {
		kv, err := open(ctx, js, cfg)
		if err == nil {
			return kv, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context done while ensuring KV bucket %s: %w", cfg.Bucket, ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		cfg.Bucket, maxRetries, lastErr)
}

func open(ctx context.Context, js jetstream.JetStream, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, cfg)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return nil, err
	}

	kv, err = js.KeyValue(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}

// KeysWithPrefix lists the keys of kv that start with prefix + ".".
//
// An empty bucket yields no keys and no error.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to list
//   - prefix: Key prefix without the trailing dot
//
// Returns:
//   - []string: Matching keys in listing order
//   - error: Listing error
func KeysWithPrefix(ctx context.Context, kv jetstream.KeyValue, prefix string) ([]string, error) {
	lister, err := kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	want := prefix + "."
	var keys []string
	for key := range lister.Keys() {
		if strings.HasPrefix(key, want) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}
