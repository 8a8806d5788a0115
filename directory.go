package shadowslot

import (
	"context"
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// ShadowRoot is a shadow tree with its own identity.
type ShadowRoot interface {
	Tree
	Node
}

// Directory owns the slot assignments of many shadow roots.
//
// A SlotAssignment is created lazily the first time a root needs one and
// lives until Discard. Roots are keyed by the root value (node IDs are only
// unique within one document), so the ShadowRoot implementation must be
// comparable. Roots of different documents may be looked up from different
// goroutines; each returned SlotAssignment is still confined to the
// goroutine that owns its tree.
type Directory struct {
	cfg     Config
	opts    []Option
	entries *xsync.Map[ShadowRoot, *SlotAssignment]
}

// NewDirectory creates a directory whose assignments share cfg and opts.
//
// Parameters:
//   - cfg: Configuration for every assignment (nil uses DefaultConfig)
//   - opts: Options applied to every assignment
//
// Returns:
//   - *Directory: Empty directory
//   - error: ErrInvalidConfig if cfg does not validate
func NewDirectory(cfg *Config, opts ...Option) (*Directory, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
		SetDefaults(&c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &Directory{
		cfg:     c,
		opts:    opts,
		entries: xsync.NewMap[ShadowRoot, *SlotAssignment](),
	}, nil
}

// For returns the slot assignment of root, creating it on first use.
//
// Parameters:
//   - root: Shadow root
//
// Returns:
//   - *SlotAssignment: The root's assignment
//   - error: Construction error for a new assignment
func (d *Directory) For(root ShadowRoot) (*SlotAssignment, error) {
	if root == nil {
		return nil, ErrTreeRequired
	}
	if sa, ok := d.entries.Load(root); ok {
		return sa, nil
	}

	sa, err := New(root, &d.cfg, d.opts...)
	if err != nil {
		return nil, err
	}
	actual, _ := d.entries.LoadOrStore(root, sa)

	return actual, nil
}

// Lookup returns the assignment of root without creating one.
func (d *Directory) Lookup(root ShadowRoot) (*SlotAssignment, bool) {
	if root == nil {
		return nil, false
	}

	return d.entries.Load(root)
}

// Discard drops the assignment of root. It reports whether one existed.
func (d *Directory) Discard(root ShadowRoot) bool {
	if root == nil {
		return false
	}
	_, ok := d.entries.LoadAndDelete(root)

	return ok
}

// Len returns the number of live assignments.
func (d *Directory) Len() int {
	return d.entries.Size()
}

// FlushAll flushes every assignment through dispatcher.
//
// All assignments are flushed even when some fail; the errors are joined.
// Callers must not mutate the owning trees concurrently.
//
// Parameters:
//   - ctx: Context for cancellation and deadline
//   - dispatcher: Dispatcher for every batch (nil = each assignment's hooks)
//
// Returns:
//   - error: Joined dispatch errors, nil if every flush succeeded
func (d *Directory) FlushAll(ctx context.Context, dispatcher Dispatcher) error {
	var errs []error
	d.entries.Range(func(root ShadowRoot, sa *SlotAssignment) bool {
		if err := sa.Flush(ctx, dispatcher); err != nil {
			errs = append(errs, fmt.Errorf("shadow root %d: %w", root.NodeID(), err))
		}

		return ctx.Err() == nil
	})
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
