package slots

import (
	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/strategy"
	"github.com/arloliu/shadowslot/types"
)

// Config holds engine configuration.
//
// Required fields must be set before calling New.
// Optional fields will be set to sensible defaults if zero-valued.
type Config struct {
	// Required dependencies
	Tree types.Tree // Shadow tree traversal primitives

	// Optional dependencies
	Resolver types.NameResolver     // Host child → slot name (default: strategy.Attribute)
	Logger   types.Logger           // Logger (default: no-op)
	Metrics  types.MetricsCollector // Metrics collector (default: no-op)

	// Optional behavior
	DisableNotifications bool // Skip change coalescing entirely (user-agent shadow roots)
	PruneEmptyRecords    bool // Drop records with no slots and no assigned nodes after a pass
	ConsistencyChecks    bool // Verify registry bookkeeping after every mutation
}

// Validate checks configuration validity.
//
// Returns an error if any required field is missing.
func (c *Config) Validate() error {
	if c.Tree == nil {
		return types.ErrTreeRequired
	}

	return nil
}

// SetDefaults applies default values for optional fields.
//
// This method is called automatically by New.
// Fields that are already set (non-zero) are not overwritten.
func (c *Config) SetDefaults() {
	if c.Resolver == nil {
		c.Resolver = strategy.NewAttribute()
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
}
