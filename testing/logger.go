package testing

import (
	"testing"

	"github.com/arloliu/shadowslot/internal/logger"
)

// NewTestLogger creates a logger that writes to tb and captures every entry.
//
// Use Entries("WARN") on the result to assert on misuse warnings.
func NewTestLogger(tb testing.TB) *logger.TestLogger {
	return logger.NewTest(tb)
}
