package types

import "errors"

// Sentinel errors for the shadowslot library.
//
// The slot assignment core itself has no run-time errors: every operation is
// total over well-formed input. Errors only surface at the edges, where
// configuration is validated and notifications leave the process.
//
// Use errors.Is() to check for them; wrapped errors carry context via
// fmt.Errorf("%s: %w", msg, err).

// Construction errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTreeRequired is returned when the shadow tree collaborator is nil.
	ErrTreeRequired = errors.New("shadow tree is required")

	// ErrNameResolverRequired is returned when a nil name resolver is supplied.
	ErrNameResolverRequired = errors.New("name resolver is required")
)

// Bookkeeping errors, returned only by consistency checks.
var (
	// ErrConsistency wraps every invariant violation reported by CheckConsistency.
	ErrConsistency = errors.New("slot assignment consistency violation")
)

// Event layer errors.
var (
	// ErrDispatchFailed is returned when a drained batch could not be delivered.
	ErrDispatchFailed = errors.New("failed to dispatch slotchange notifications")

	// ErrPublishFailed is returned when publishing to NATS fails.
	ErrPublishFailed = errors.New("failed to publish slot assignment")

	// ErrNATSConnectionRequired is returned when a NATS-backed publisher has no connection.
	ErrNATSConnectionRequired = errors.New("NATS connection is required")

	// ErrSubscriberClosed is returned when a subscription is used after unsubscribe.
	ErrSubscriberClosed = errors.New("subscriber closed")

	// ErrHandlerRequired is returned when a watcher is created without a handler.
	ErrHandlerRequired = errors.New("batch handler is required")
)
