package shadowslot

// Option configures a SlotAssignment with optional dependencies.
type Option func(*assignmentOptions)

// assignmentOptions holds optional SlotAssignment configuration.
type assignmentOptions struct {
	logger   Logger
	metrics  MetricsCollector
	hooks    *Hooks
	resolver NameResolver

	resolverSet bool
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	sa, err := shadowslot.New(root, nil, shadowslot.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *assignmentOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *assignmentOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets the hooks Flush falls back to when called without a dispatcher.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &shadowslot.Hooks{
//	    OnSlotchange: func(ctx context.Context, n shadowslot.Notification) error {
//	        return fire(n.Slot, "slotchange")
//	    },
//	}
//	sa, err := shadowslot.New(root, nil, shadowslot.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *assignmentOptions) {
		o.hooks = hooks
	}
}

// WithNameResolver sets the policy deriving a host child's slot name.
//
// Parameters:
//   - resolver: NameResolver implementation (default: strategy.Attribute)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	summary := strategy.NewFirstMatch(root, "summary", isSummary)
//	sa, err := shadowslot.New(root, nil, shadowslot.WithNameResolver(summary))
func WithNameResolver(resolver NameResolver) Option {
	return func(o *assignmentOptions) {
		o.resolver = resolver
		o.resolverSet = true
	}
}
