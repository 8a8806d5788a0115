package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)
	require.NotNil(t, ns)
	require.True(t, nc.IsConnected())

	sub, err := nc.SubscribeSync("shadowslot.slotchange")
	require.NoError(t, err)
	require.NoError(t, nc.Publish("shadowslot.slotchange", []byte(`{"sequence":1}`)))

	msg, err := sub.NextMsg(time.Second)
	require.NoError(t, err)
	require.JSONEq(t, `{"sequence":1}`, string(msg.Data))
}

func TestStartEmbeddedNATS_IsolatedServers(t *testing.T) {
	t.Parallel()

	a, _ := StartEmbeddedNATS(t)
	b, _ := StartEmbeddedNATS(t)
	require.NotEqual(t, a.ClientURL(), b.ClientURL())
}

func TestCreateJetStreamKV(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	cards := CreateJetStreamKV(t, nc, "cards")
	dialogs := CreateJetStreamKV(t, nc, "dialogs")

	_, err := cards.Put(ctx, "slot.title", []byte(`{"nodes":[1]}`))
	require.NoError(t, err)
	_, err = dialogs.Put(ctx, "slot.title", []byte(`{"nodes":[2,3]}`))
	require.NoError(t, err)

	entry, err := cards.Get(ctx, "slot.title")
	require.NoError(t, err)
	require.JSONEq(t, `{"nodes":[1]}`, string(entry.Value()))

	entry, err = dialogs.Get(ctx, "slot.title")
	require.NoError(t, err)
	require.JSONEq(t, `{"nodes":[2,3]}`, string(entry.Value()))
}
