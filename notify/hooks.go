package notify

import (
	"context"
	"fmt"

	"github.com/arloliu/shadowslot/internal/hooks"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/types"
)

// HookDispatcher delivers each notification to Hooks.OnSlotchange.
type HookDispatcher struct {
	hooks   *types.Hooks
	metrics types.MetricsCollector
}

var _ types.Dispatcher = (*HookDispatcher)(nil)

// NewHookDispatcher creates a dispatcher calling h.
//
// Parameters:
//   - h: Hooks to call (nil callbacks are no-ops)
//   - m: Metrics collector (nil = no-op)
//
// Returns:
//   - *HookDispatcher: Dispatcher calling h synchronously
func NewHookDispatcher(h *types.Hooks, m types.MetricsCollector) *HookDispatcher {
	if m == nil {
		m = metrics.NewNop()
	}

	return &HookDispatcher{hooks: hooks.Fill(h), metrics: m}
}

// Dispatch calls OnSlotchange for every notification in order.
// The first hook error stops delivery of the rest of the batch.
func (d *HookDispatcher) Dispatch(ctx context.Context, batch []types.Notification) error {
	for _, n := range batch {
		if err := ctx.Err(); err != nil {
			d.metrics.RecordDispatch("hooks", false)
			return err
		}
		if err := d.hooks.OnSlotchange(ctx, n); err != nil {
			d.metrics.RecordDispatch("hooks", false)
			return fmt.Errorf("%w: slot %q: %w", types.ErrDispatchFailed, n.Name, err)
		}
	}
	d.metrics.RecordDispatch("hooks", true)

	return nil
}
