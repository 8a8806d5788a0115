// Package subscription consumes slotchange batches published by
// notify.NATSPublisher.
//
// A Watcher subscribes to the publish subject, decodes every message into a
// Batch and hands it to a Handler. It tracks the last sequence seen per
// publishing instance so a consumer can tell when batches were lost
// (Batch.Missed) and drops redelivered ones.
//
// Basic usage:
//
//	w, err := subscription.NewWatcher(nc, subscription.Config{Subject: "shadowslot.slotchange"},
//	    subscription.HandlerFunc(func(ctx context.Context, b subscription.Batch) error {
//	        for _, n := range b.Notifications {
//	            fmt.Println(n.Name, n.Nodes)
//	        }
//	        return nil
//	    }))
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
package subscription
