package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/types"
)

func TestNewNop(t *testing.T) {
	h := NewNop()

	require.NotNil(t, h.OnSlotchange)
	require.NotNil(t, h.OnError)
	require.NoError(t, h.OnSlotchange(context.Background(), types.Notification{Name: "header"}))
	require.NoError(t, h.OnError(context.Background(), context.Canceled))
}

func TestFill(t *testing.T) {
	t.Run("nil hooks", func(t *testing.T) {
		h := Fill(nil)
		require.NotNil(t, h.OnSlotchange)
		require.NotNil(t, h.OnError)
	})

	t.Run("keeps custom callbacks", func(t *testing.T) {
		errCustom := errors.New("custom")
		h := Fill(&types.Hooks{
			OnSlotchange: func(context.Context, types.Notification) error { return errCustom },
		})

		require.ErrorIs(t, h.OnSlotchange(context.Background(), types.Notification{}), errCustom)
		require.NoError(t, h.OnError(context.Background(), errCustom))
	})
}
