// Package natsutil classifies NATS client errors.
package natsutil

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
// Publishers log these at Warn since the next flush may well succeed;
// anything else is a configuration problem and logged at Error.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionDraining) ||
		errors.Is(err, nats.ErrNoResponders) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// LogPublishError logs a failed publish at the level its cause deserves.
//
// Parameters:
//   - logger: Destination logger
//   - msg: Log message
//   - err: Publish error
//   - keysAndValues: Extra fields
func LogPublishError(logger interface {
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}, msg string, err error, keysAndValues ...any,
) {
	fields := append([]any{"error", err}, keysAndValues...)
	if IsConnectivityError(err) {
		logger.Warn(msg, append(fields, "connectivity", true)...)
		return
	}
	logger.Error(msg, fields...)
}
