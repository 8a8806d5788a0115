package types

import "context"

// Hooks defines callbacks for coalesced slot assignment events.
//
// Hooks run synchronously inside Flush, on the caller's goroutine, after the
// batch has been drained. A hook error stops delivery of the remaining batch
// and is returned from Flush; OnError is then called with that error.
//
// Example:
//
//	hooks := &shadowslot.Hooks{
//	    OnSlotchange: func(ctx context.Context, n shadowslot.Notification) error {
//	        return events.Fire(n.Slot, "slotchange")
//	    },
//	}
type Hooks struct {
	// OnSlotchange is called once per drained slot name.
	OnSlotchange func(ctx context.Context, n Notification) error

	// OnError is called when dispatching a batch fails.
	OnError func(ctx context.Context, err error) error
}
