package notify

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/internal/fingerprint"
	slottest "github.com/arloliu/shadowslot/testing"
	"github.com/arloliu/shadowslot/types"
)

func TestKVPublisher(t *testing.T) {
	_, nc := slottest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("requires jetstream", func(t *testing.T) {
		_, err := NewKVPublisher(ctx, nil, "b")
		require.ErrorIs(t, err, types.ErrNATSConnectionRequired)
	})

	t.Run("stores one snapshot per notification", func(t *testing.T) {
		_, _, engine, batch := cardTree(t)
		m := newRecordingMetrics()

		pub, err := NewKVPublisher(ctx, js, "snapshots-basic", WithKeyPrefix("card"), WithInstanceID("i1"), WithMetrics(m))
		require.NoError(t, err)
		require.Equal(t, int64(0), pub.Version())

		require.NoError(t, pub.Dispatch(ctx, batch))
		require.Equal(t, int64(1), pub.Version())
		require.Equal(t, []bool{true}, m.outcomes("kv"))

		snap, err := pub.Get(ctx, "title")
		require.NoError(t, err)
		require.Equal(t, "title", snap.Name)
		require.Equal(t, int64(1), snap.Version)
		require.Equal(t, "i1", snap.Instance)
		require.Len(t, snap.Nodes, 1)

		title, _ := engine.CanonicalSlot("title")
		require.NotNil(t, snap.Slot)
		require.Equal(t, title.NodeID(), *snap.Slot)

		require.Equal(t, "card."+fingerprint.NameKey("title"), pub.Key("title"))
		require.Equal(t, "card.default", pub.Key(""))

		_, err = pub.Get(ctx, "never")
		require.ErrorIs(t, err, jetstream.ErrKeyNotFound)
	})

	t.Run("versions resume after restart", func(t *testing.T) {
		_, _, _, batch := cardTree(t)

		first, err := NewKVPublisher(ctx, js, "snapshots-resume", WithKeyPrefix("card"))
		require.NoError(t, err)
		for range 3 {
			require.NoError(t, first.Dispatch(ctx, batch))
		}
		require.Equal(t, int64(3), first.Version())

		second, err := NewKVPublisher(ctx, js, "snapshots-resume", WithKeyPrefix("card"))
		require.NoError(t, err)
		require.Equal(t, int64(3), second.Version())

		other, err := NewKVPublisher(ctx, js, "snapshots-resume", WithKeyPrefix("other"))
		require.NoError(t, err)
		require.Equal(t, int64(0), other.Version())

		require.NoError(t, second.Dispatch(ctx, batch[:1]))
		snap, err := second.Get(ctx, batch[0].Name)
		require.NoError(t, err)
		require.Equal(t, int64(4), snap.Version)
	})

	t.Run("cleanup removes only own prefix", func(t *testing.T) {
		_, _, _, batch := cardTree(t)
		kv := slottest.CreateJetStreamKV(t, nc, "snapshots-cleanup")

		a := NewKVPublisherForBucket(kv, WithKeyPrefix("a"))
		b := NewKVPublisherForBucket(kv, WithKeyPrefix("b"))
		require.NoError(t, a.Dispatch(ctx, batch))
		require.NoError(t, b.Dispatch(ctx, batch))

		deleted, err := a.Cleanup(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, deleted)

		_, err = a.Get(ctx, "title")
		require.ErrorIs(t, err, jetstream.ErrKeyNotFound)
		_, err = b.Get(ctx, "title")
		require.NoError(t, err)
	})
}
