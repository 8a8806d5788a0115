// Package hooks provides default slot assignment hooks.
package hooks

import (
	"context"

	"github.com/arloliu/shadowslot/types"
)

// NopHooks implements every hook callback as a no-op.
//
// Installing it fills the Hooks struct so callers never check for nil.
type NopHooks struct{}

var (
	_ func(context.Context, types.Notification) error = (*NopHooks)(nil).OnSlotchange
	_ func(context.Context, error) error              = (*NopHooks)(nil).OnError
)

// NewNop returns hooks whose callbacks do nothing.
func NewNop() *types.Hooks {
	h := &NopHooks{}
	return &types.Hooks{
		OnSlotchange: h.OnSlotchange,
		OnError:      h.OnError,
	}
}

// Fill sets every nil callback of h to its no-op variant.
//
// Returns:
//   - *types.Hooks: h itself, or new no-op hooks when h is nil
func Fill(h *types.Hooks) *types.Hooks {
	if h == nil {
		return NewNop()
	}
	nop := &NopHooks{}
	if h.OnSlotchange == nil {
		h.OnSlotchange = nop.OnSlotchange
	}
	if h.OnError == nil {
		h.OnError = nop.OnError
	}

	return h
}

// OnSlotchange ignores the notification.
func (h *NopHooks) OnSlotchange(_ context.Context, _ types.Notification) error {
	return nil
}

// OnError swallows the error.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
