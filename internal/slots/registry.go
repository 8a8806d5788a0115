package slots

import (
	"fmt"
	"slices"

	"github.com/arloliu/shadowslot/types"
)

// Engine distributes a shadow host's children to the slots of its shadow tree.
type Engine struct {
	tree     types.Tree
	resolver types.NameResolver
	logger   types.Logger
	metrics  types.MetricsCollector

	notify bool
	prune  bool
	checks bool

	records map[string]*record

	// members maps every registered slot element to the name it was
	// registered under. Unregistering an element that is not here is a no-op.
	members map[types.NodeID]string

	// assignedTo maps host children to the name whose list holds them.
	assignedTo map[types.NodeID]string

	mutationVersion        uint64
	resolvedVersion        uint64
	needsElementResolution bool
	bulkRemoval            bool

	elementResolutions uint64
	assignmentPasses   uint64

	changes *coalescer

	// fallbacks holds slots whose fallback content changed since the last
	// pass. The pass reports those that render nothing.
	fallbacks map[types.NodeID]types.SlotElement
}

// New creates an engine for one shadow tree.
//
// The default slot record exists from the start: content asking for the
// default slot is collected even before a default slot element appears.
//
// Parameters:
//   - cfg: Engine configuration (Tree is required)
//
// Returns:
//   - *Engine: New engine; the first query runs a full assignment pass
//   - error: Validation error if required fields are missing
//
// Example:
//
//	engine, err := slots.New(&slots.Config{Tree: root})
//	if err != nil {
//	    return err
//	}
//	engine.AddSlot("", defaultSlot)
//	nodes, _ := engine.AssignedNodes(defaultSlot)
func New(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.SetDefaults()

	e := &Engine{
		tree:       cfg.Tree,
		resolver:   cfg.Resolver,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		notify:     !cfg.DisableNotifications,
		prune:      cfg.PruneEmptyRecords,
		checks:     cfg.ConsistencyChecks,
		records:    map[string]*record{types.DefaultSlotName: {}},
		members:    make(map[types.NodeID]string),
		assignedTo: make(map[types.NodeID]string),
		changes:    newCoalescer(),
		fallbacks:  make(map[types.NodeID]types.SlotElement),
		// Start stale so the first query distributes existing children.
		mutationVersion: 1,
	}

	return e, nil
}

// lookup returns the record for name, creating it on demand.
func (e *Engine) lookup(name string) *record {
	rec, ok := e.records[name]
	if !ok {
		rec = &record{}
		e.records[name] = rec
	}

	return rec
}

// bump records one mutation entry point call.
func (e *Engine) bump(kind string) {
	e.mutationVersion++
	e.metrics.RecordMutation(kind)
}

// AddSlot registers a slot element under name.
//
// The first element registered for a name becomes canonical immediately.
// Further elements make the name duplicated; since registration order is not
// tree order, the canonical element is then re-picked lazily by a tree-order
// scan on the next query.
//
// Registering an element that is already registered is API misuse: it is
// logged, counted, and otherwise ignored.
//
// Parameters:
//   - name: Slot name (DefaultSlotName for the default slot)
//   - slot: Slot element that was inserted into the shadow tree
func (e *Engine) AddSlot(name string, slot types.SlotElement) {
	e.bump("add_slot")
	e.register(name, slot)
	e.verify("add_slot")
}

// RemoveSlot unregisters a slot element from name.
//
// If the element was canonical, the name's canonical reference is cleared and
// the next candidate in tree order is promoted on the next query. Removing an
// element that is not registered under name is a no-op.
//
// Parameters:
//   - name: Name the element was registered under
//   - slot: Slot element leaving the shadow tree
//   - formerParent: Parent the removed subtree was detached from (nil when
//     the element stays in the tree, e.g. during a rename)
func (e *Engine) RemoveSlot(name string, slot types.SlotElement, formerParent types.Node) {
	e.bump("remove_slot")
	if e.unregister(name, slot) && formerParent != nil {
		e.logger.Debug("slot removed with subtree",
			"name", name,
			"slot_id", slot.NodeID(),
			"former_parent_id", formerParent.NodeID())
	}
	e.verify("remove_slot")
}

// RenameSlot moves a slot element from oldName to newName.
//
// Equivalent to RemoveSlot(oldName) followed by AddSlot(newName) as one
// mutation, and both names are reported to the change coalescer.
//
// Parameters:
//   - slot: Slot element whose name attribute changed
//   - oldName: Name it was registered under
//   - newName: Name it now declares
func (e *Engine) RenameSlot(slot types.SlotElement, oldName, newName string) {
	e.bump("rename_slot")
	e.unregister(oldName, slot)
	e.register(newName, slot)
	e.markChanged(oldName, slot, false)
	e.markChanged(newName, slot, false)
	e.verify("rename_slot")
}

func (e *Engine) register(name string, slot types.SlotElement) {
	id := slot.NodeID()
	if registered, ok := e.members[id]; ok {
		e.violation("duplicate_registration", "slot_id", id, "name", name, "registered_as", registered)
		return
	}
	e.members[id] = name

	rec := e.lookup(name)
	rec.count++
	if rec.count == 1 {
		rec.setCanonical(slot)
		return
	}

	// The first element in tree order wins, not the first registered.
	rec.canonical = nil
	e.needsElementResolution = true
}

func (e *Engine) unregister(name string, slot types.SlotElement) bool {
	id := slot.NodeID()
	registered, ok := e.members[id]
	if !ok || registered != name {
		e.logger.Debug("ignoring unregister of unknown slot", "slot_id", id, "name", name)
		e.metrics.RecordConsistencyViolation("unknown_unregister")
		return false
	}
	delete(e.members, id)

	rec := e.records[name]
	rec.count--
	if types.SameNode(rec.canonical, slot) {
		rec.canonical = nil
		rec.previous = slot
	}
	if rec.count > 0 && rec.canonical == nil {
		e.needsElementResolution = true
	}

	return true
}

func (e *Engine) violation(kind string, keysAndValues ...any) {
	e.logger.Warn("slot assignment misuse: "+kind, keysAndValues...)
	e.metrics.RecordConsistencyViolation(kind)
}

// verify checks registry bookkeeping when consistency checks are enabled.
func (e *Engine) verify(op string) {
	if !e.checks {
		return
	}
	for _, err := range e.bookkeepingErrors() {
		e.logger.Warn("slot registry inconsistent", "op", op, "error", err)
		e.metrics.RecordConsistencyViolation("invariant")
	}
}

// SlotCount returns the number of slot elements registered under name.
func (e *Engine) SlotCount(name string) int {
	if rec, ok := e.records[name]; ok {
		return rec.count
	}

	return 0
}

// Names returns the names of all slot records, sorted.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.records))
	for name := range e.records {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Describe returns a read-only view of the record for name.
//
// The view reflects the current (resolved) assignment.
func (e *Engine) Describe(name string) (RecordInfo, bool) {
	e.ensureResolved()
	rec, ok := e.records[name]
	if !ok {
		return RecordInfo{}, false
	}

	return rec.info(name), true
}
