package shadowslot

import "github.com/arloliu/shadowslot/types"

// Sentinel errors, re-exported from package types.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrTreeRequired is returned when the shadow tree collaborator is nil.
	ErrTreeRequired = types.ErrTreeRequired

	// ErrNameResolverRequired is returned when a nil name resolver is supplied.
	ErrNameResolverRequired = types.ErrNameResolverRequired

	// ErrConsistency wraps every invariant violation reported by CheckConsistency.
	ErrConsistency = types.ErrConsistency

	// ErrDispatchFailed is returned when a drained batch could not be delivered.
	ErrDispatchFailed = types.ErrDispatchFailed

	// ErrPublishFailed is returned when publishing to NATS fails.
	ErrPublishFailed = types.ErrPublishFailed

	// ErrNATSConnectionRequired is returned when a NATS-backed publisher has no connection.
	ErrNATSConnectionRequired = types.ErrNATSConnectionRequired

	// ErrSubscriberClosed is returned when a subscription is used after unsubscribe.
	ErrSubscriberClosed = types.ErrSubscriberClosed

	// ErrHandlerRequired is returned when a watcher is created without a handler.
	ErrHandlerRequired = types.ErrHandlerRequired
)
