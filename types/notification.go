package types

import "context"

// Notification is one coalesced slotchange signal.
//
// Exactly one Notification is produced per slot name per drained batch,
// no matter how many mutations touched that name.
type Notification struct {
	// Name is the slot name whose observable assignment changed.
	Name string `json:"name"`

	// Slot is the element the event should be dispatched at. It is the
	// current canonical element for Name when one exists, otherwise the
	// element that last held the name. It may be nil when no element ever
	// rendered the name (e.g. the default name without a default slot).
	Slot SlotElement `json:"-"`

	// Nodes is the assignment for Name at drain time, in host-child tree order.
	Nodes []NodeID `json:"nodes"`
}

// SlotID returns the target element's identity and whether there is a target.
func (n Notification) SlotID() (NodeID, bool) {
	if n.Slot == nil {
		return 0, false
	}

	return n.Slot.NodeID(), true
}

// Dispatcher delivers drained notifications to the event layer.
//
// Implementations may perform I/O (publishing to a message bus) and must
// respect context cancellation.
type Dispatcher interface {
	// Dispatch delivers one drained batch.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - batch: Notifications of one drained batch, sorted by name
	//
	// Returns:
	//   - error: Delivery error (the batch is not retried by the caller)
	Dispatch(ctx context.Context, batch []Notification) error
}

// DispatcherFunc adapts a plain function to Dispatcher.
type DispatcherFunc func(ctx context.Context, batch []Notification) error

// Dispatch calls f(ctx, batch).
func (f DispatcherFunc) Dispatch(ctx context.Context, batch []Notification) error {
	return f(ctx, batch)
}
