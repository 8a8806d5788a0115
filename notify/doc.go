// Package notify delivers drained slotchange batches to the event layer.
//
// Every type here implements types.Dispatcher and can be passed to
// SlotAssignment.Flush:
//
//   - HookDispatcher calls Hooks.OnSlotchange once per notification
//   - Broadcaster fans batches out to in-process subscribers over channels
//   - NATSPublisher publishes each batch as one JSON message on a subject
//   - KVPublisher stores a per-name assignment snapshot in a JetStream KV bucket
//   - Multi delivers to several dispatchers in order
//
// Example:
//
//	pub, err := notify.NewNATSPublisher(nc, "shadowslot.slotchange",
//	    notify.WithLogger(logger),
//	    notify.WithTimeout(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	err = sa.Flush(ctx, notify.NewMulti(hooksDispatcher, pub))
package notify
