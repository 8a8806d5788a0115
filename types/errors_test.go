package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrConsistency, ErrConsistency))
		require.False(t, errors.Is(ErrConsistency, ErrInvalidConfig))

		wrapped := fmt.Errorf("%w: slot 42 registered twice", ErrConsistency)
		require.True(t, errors.Is(wrapped, ErrConsistency))

		joined := errors.Join(wrapped, fmt.Errorf("%w: count mismatch", ErrConsistency))
		require.True(t, errors.Is(joined, ErrConsistency))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrInvalidConfig,
			ErrTreeRequired,
			ErrNameResolverRequired,
			ErrConsistency,
			ErrDispatchFailed,
			ErrPublishFailed,
			ErrNATSConnectionRequired,
			ErrSubscriberClosed,
			ErrHandlerRequired,
		}

		for i, a := range allErrors {
			for j, b := range allErrors {
				if i == j {
					continue
				}
				require.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	})
}
