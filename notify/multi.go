package notify

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/shadowslot/types"
)

// Multi delivers every batch to several dispatchers in order.
//
// A failing dispatcher does not stop the others; the errors are joined.
type Multi []types.Dispatcher

var _ types.Dispatcher = Multi(nil)

// NewMulti combines dispatchers. Nil entries are skipped.
func NewMulti(ds ...types.Dispatcher) Multi {
	m := make(Multi, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			m = append(m, d)
		}
	}

	return m
}

// Dispatch delivers batch to each dispatcher.
func (m Multi) Dispatch(ctx context.Context, batch []types.Notification) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "notify.Multi.Dispatch",
		trace.WithAttributes(
			attribute.Int("dispatchers", len(m)),
			attribute.Int("notifications", len(batch)),
		),
	)
	defer span.End()

	var errs []error
	for i, d := range m {
		if err := d.Dispatch(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher %d: %w", i, err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d dispatchers failed", len(errs), len(m)))
	}

	return err
}
