package shadowslot

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arloliu/shadowslot/internal/hooks"
	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/internal/metrics"
	"github.com/arloliu/shadowslot/internal/slots"
	"github.com/arloliu/shadowslot/notify"
	"github.com/arloliu/shadowslot/strategy"
)

const tracerName = "github.com/arloliu/shadowslot"

// SlotAssignment distributes the children of one shadow host to the slots of
// its shadow tree.
//
// The owning tree calls the mutation hooks (AddSlot, RemoveSlot,
// BeforeHostChildrenChange, ...) as it mutates; queries resolve lazily and
// at most once per batch of mutations. A SlotAssignment is not safe for
// concurrent use: it lives on the goroutine that owns the tree.
type SlotAssignment struct {
	engine *slots.Engine
	cfg    Config
	logger Logger
	hooks  *Hooks

	hookDispatcher Dispatcher
}

// New creates the slot assignment for a shadow tree.
//
// Parameters:
//   - tree: The shadow tree (traversal of host children and slot elements)
//   - cfg: Configuration (nil uses DefaultConfig)
//   - opts: Optional logger, metrics, hooks and name resolver
//
// Returns:
//   - *SlotAssignment: Ready-to-use assignment; the first query distributes
//     the host's existing children
//   - error: ErrTreeRequired, ErrNameResolverRequired or ErrInvalidConfig
//
// Example:
//
//	root, _ := doc.AttachShadow(host)
//	sa, err := shadowslot.New(root, nil, shadowslot.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	root.SetDistributor(sa)
func New(tree Tree, cfg *Config, opts ...Option) (*SlotAssignment, error) {
	if tree == nil {
		return nil, ErrTreeRequired
	}

	var c Config
	if cfg == nil {
		c = DefaultConfig()
	} else {
		c = *cfg
		SetDefaults(&c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := assignmentOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolverSet && o.resolver == nil {
		return nil, ErrNameResolverRequired
	}
	if o.resolver == nil {
		o.resolver = strategy.NewAttribute()
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	if o.hooks != nil {
		// Directory shares one Hooks value between assignments.
		hc := *o.hooks
		o.hooks = &hc
	}
	h := hooks.Fill(o.hooks)

	engine, err := slots.New(&slots.Config{
		Tree:                 tree,
		Resolver:             o.resolver,
		Logger:               o.logger,
		Metrics:              o.metrics,
		DisableNotifications: !c.NotificationsEnabled(),
		PruneEmptyRecords:    c.PruneEmptyRecords,
		ConsistencyChecks:    c.ConsistencyChecks,
	})
	if err != nil {
		return nil, fmt.Errorf("create slot engine: %w", err)
	}

	return &SlotAssignment{
		engine:         engine,
		cfg:            c,
		logger:         o.logger,
		hooks:          h,
		hookDispatcher: notify.NewHookDispatcher(h, o.metrics),
	}, nil
}

// Config returns the effective configuration.
func (sa *SlotAssignment) Config() Config {
	return sa.cfg
}

// AssignedSlot returns the slot element a host child is rendered through.
//
// Parameters:
//   - node: Direct child of the shadow host
//
// Returns:
//   - SlotElement: Canonical slot element holding node
//   - bool: false if node is not assigned (no slot for its name, or not a host child)
func (sa *SlotAssignment) AssignedSlot(node Node) (SlotElement, bool) {
	return sa.engine.AssignedSlot(node)
}

// AssignedNodes returns the host children rendered through a slot element,
// in host-child tree order.
//
// Parameters:
//   - slot: Slot element of this shadow tree
//
// Returns:
//   - []Node: Assigned nodes; do not modify
//   - bool: false if slot is not the canonical element of its name
func (sa *SlotAssignment) AssignedNodes(slot SlotElement) ([]Node, bool) {
	return sa.engine.AssignedNodes(slot)
}

// CanonicalSlot returns the element that renders name, if any.
func (sa *SlotAssignment) CanonicalSlot(name string) (SlotElement, bool) {
	return sa.engine.CanonicalSlot(name)
}

// AddSlot registers a slot element inserted into the shadow tree.
func (sa *SlotAssignment) AddSlot(name string, slot SlotElement) {
	sa.engine.AddSlot(name, slot)
}

// RemoveSlot unregisters a slot element removed from the shadow tree.
//
// Parameters:
//   - name: Name the element was registered under
//   - slot: The removed element
//   - formerParent: The element's parent before removal
func (sa *SlotAssignment) RemoveSlot(name string, slot SlotElement, formerParent Node) {
	sa.engine.RemoveSlot(name, slot, formerParent)
}

// RenameSlot moves a connected slot element from oldName to newName.
func (sa *SlotAssignment) RenameSlot(slot SlotElement, oldName, newName string) {
	sa.engine.RenameSlot(slot, oldName, newName)
}

// FallbackChanged records a change of a slot element's own children.
func (sa *SlotAssignment) FallbackChanged(slot SlotElement) {
	sa.engine.FallbackChanged(slot)
}

// BeforeHostChildrenChange must be called before a host child element or
// text node is inserted or removed.
func (sa *SlotAssignment) BeforeHostChildrenChange() {
	sa.engine.BeforeHostChildrenChange()
}

// WillRemoveAllHostChildren must be called before every host child is removed at once.
func (sa *SlotAssignment) WillRemoveAllHostChildren() {
	sa.engine.WillRemoveAllHostChildren()
}

// HostChildChanged records an attribute change on a host child that may
// affect the name policy.
func (sa *SlotAssignment) HostChildChanged(child Node) {
	sa.engine.HostChildChanged(child)
}

// HostChildSlotAttributeChanged records a change of a host child's slot attribute.
func (sa *SlotAssignment) HostChildSlotAttributeChanged(child Node, oldName, newName string) {
	sa.engine.HostChildSlotAttributeChanged(child, oldName, newName)
}

// DidChangeSlot marks name as changed without any structural mutation.
func (sa *SlotAssignment) DidChangeSlot(name string) {
	sa.engine.DidChangeSlot(name)
}

// DrainChangedNames returns the sorted set of names whose observable
// assignment changed since the last drain.
func (sa *SlotAssignment) DrainChangedNames() []string {
	return sa.engine.DrainChangedNames()
}

// DrainNotifications returns one notification per changed name, sorted by name.
func (sa *SlotAssignment) DrainNotifications() []Notification {
	return sa.engine.DrainNotifications()
}

// SlotCount returns the number of slot elements registered under name.
func (sa *SlotAssignment) SlotCount(name string) int {
	return sa.engine.SlotCount(name)
}

// Names returns the sorted names of all slot records.
func (sa *SlotAssignment) Names() []string {
	return sa.engine.Names()
}

// Stats returns bookkeeping counters without resolving.
func (sa *SlotAssignment) Stats() Stats {
	return sa.engine.Stats()
}

// Fingerprint returns an order-sensitive digest of the whole assignment.
func (sa *SlotAssignment) Fingerprint() uint64 {
	return sa.engine.Fingerprint()
}

// CheckConsistency verifies every bookkeeping invariant.
//
// Returns:
//   - error: nil, or errors.Join of violations each wrapping ErrConsistency
func (sa *SlotAssignment) CheckConsistency() error {
	return sa.engine.CheckConsistency()
}

// Flush drains the pending notifications and delivers them in one batch.
//
// When d is nil the batch goes to the hooks installed with WithHooks. An
// empty drain dispatches nothing. A dispatch error is wrapped with
// ErrDispatchFailed, handed to Hooks.OnError, and returned; the drained
// batch is not retried.
//
// Parameters:
//   - ctx: Context for cancellation and deadline
//   - d: Dispatcher for the batch (nil = hooks)
//
// Returns:
//   - error: Dispatch error, nil on success or empty batch
//
// Example:
//
//	pub, _ := notify.NewNATSPublisher(nc, cfg.Publish.Subject)
//	if err := sa.Flush(ctx, pub); err != nil {
//	    logger.Warn("slotchange dispatch failed", "error", err)
//	}
func (sa *SlotAssignment) Flush(ctx context.Context, d Dispatcher) error {
	batch := sa.engine.DrainNotifications()
	if len(batch) == 0 {
		return nil
	}
	if d == nil {
		d = sa.hookDispatcher
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "shadowslot.Flush",
		trace.WithAttributes(attribute.Int("notifications", len(batch))),
	)
	defer span.End()

	err := d.Dispatch(ctx, batch)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "dispatch failed")
	if !errors.Is(err, ErrDispatchFailed) {
		err = fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	if hookErr := sa.hooks.OnError(ctx, err); hookErr != nil {
		sa.logger.Error("slotchange error hook failed", "error", hookErr)
	}

	return err
}
