// Package testing provides test utilities for shadowslot.
//
// It offers an embedded NATS server for publisher tests, a capturing test
// logger, and a brute-force oracle that recomputes a slot assignment from
// scratch so the incremental engine can be checked against it after any
// sequence of mutations.
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - Expect / RequireMatchesOracle: Reference assignment and assertion
//   - NewTestLogger: Logger writing to testing.TB
//
// Example usage:
//
//	import (
//	    "testing"
//	    slottest "github.com/arloliu/shadowslot/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    // ... build a tree and a SlotAssignment, mutate it ...
//	    slottest.RequireMatchesOracle(t, sa, root, strategy.NewAttribute())
//	}
package testing
