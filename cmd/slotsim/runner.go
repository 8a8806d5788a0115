package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/arloliu/shadowslot"
	"github.com/arloliu/shadowslot/domtree"
	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/notify"
	"github.com/arloliu/shadowslot/types"
)

// Runner replays a scenario against a domtree document.
type Runner struct {
	sc     *Scenario
	out    io.Writer
	logger types.Logger

	doc  *domtree.Document
	host *domtree.Node
	root *domtree.Node
	sa   *shadowslot.SlotAssignment

	nodes  map[string]*domtree.Node
	labels map[types.NodeID]string

	dispatcher types.Dispatcher
	check      bool
	step       int
	printed    int
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Out receives the notification lines and the final dump.
	Out io.Writer

	// Check runs CheckConsistency after every step.
	Check bool

	// Dispatchers receive every flushed batch after it is printed.
	Dispatchers []types.Dispatcher

	// Options are passed to shadowslot.New.
	Options []shadowslot.Option

	// Logger logs progress (also passed to shadowslot.New).
	Logger types.Logger
}

// NewRunner builds the initial trees of sc.
func NewRunner(sc *Scenario, cfg *shadowslot.Config, opts RunnerOptions) (*Runner, error) {
	r := &Runner{
		sc:     sc,
		out:    opts.Out,
		logger: opts.Logger,
		doc:    domtree.NewDocument(),
		nodes:  make(map[string]*domtree.Node),
		labels: make(map[types.NodeID]string),
		check:  opts.Check,
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.logger == nil {
		r.logger = logger.NewNop()
	}

	r.host = r.doc.CreateElement(sc.Host)
	if err := r.doc.Body().AppendChild(r.host); err != nil {
		return nil, err
	}
	root, err := r.doc.AttachShadow(r.host)
	if err != nil {
		return nil, err
	}
	r.root = root
	r.label(labelHost, r.host)
	r.label(labelRoot, r.root)

	saOpts := append([]shadowslot.Option(nil), opts.Options...)
	if opts.Logger != nil {
		saOpts = append(saOpts, shadowslot.WithLogger(opts.Logger))
	}
	r.sa, err = shadowslot.New(r.root, cfg, saOpts...)
	if err != nil {
		return nil, err
	}
	r.root.SetDistributor(r.sa)

	r.dispatcher = notify.NewMulti(append([]types.Dispatcher{types.DispatcherFunc(r.print)}, opts.Dispatchers...)...)

	for _, spec := range sc.Shadow {
		if _, err := r.attach(spec, r.root, nil); err != nil {
			return nil, fmt.Errorf("build shadow tree: %w", err)
		}
	}
	for _, spec := range sc.Children {
		if _, err := r.attach(spec, r.host, nil); err != nil {
			return nil, fmt.Errorf("build host children: %w", err)
		}
	}

	return r, nil
}

// Assignment returns the slot assignment under test.
func (r *Runner) Assignment() *shadowslot.SlotAssignment {
	return r.sa
}

// Node returns a labelled node.
func (r *Runner) Node(label string) (*domtree.Node, bool) {
	n, ok := r.nodes[label]
	return n, ok
}

// Printed returns how many notifications were printed so far.
func (r *Runner) Printed() int {
	return r.printed
}

// Run flushes the initial state, replays every step and flushes once more.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.flush(ctx); err != nil {
		return err
	}
	for i, st := range r.sc.Steps {
		r.step = i + 1
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.apply(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", r.step, st.Op, err)
		}
		if r.check {
			if err := r.sa.CheckConsistency(); err != nil {
				return fmt.Errorf("step %d (%s): %w", r.step, st.Op, err)
			}
		}
	}
	r.step = len(r.sc.Steps) + 1

	return r.flush(ctx)
}

func (r *Runner) apply(ctx context.Context, st Step) error {
	switch st.Op {
	case opAppend:
		_, err := r.attach(*st.Node, r.resolve(st.Parent, r.host), nil)
		return err
	case opInsertBefore:
		_, err := r.attach(*st.Node, r.resolve(st.Parent, r.host), r.nodes[st.Before])
		return err
	case opRemove:
		n := r.nodes[st.Target]
		if n.Parent() == nil {
			return fmt.Errorf("%s is detached", st.Target)
		}
		return n.Parent().RemoveChild(n)
	case opRemoveAll:
		r.resolve(st.Parent, r.host).RemoveAllChildren()
		return nil
	case opSetAttr:
		r.nodes[st.Target].SetAttribute(st.Attr, st.Value)
		return nil
	case opRemoveAttr:
		r.nodes[st.Target].RemoveAttribute(st.Attr)
		return nil
	case opFlush:
		return r.flush(ctx)
	}

	return fmt.Errorf("unknown op %q", st.Op)
}

func (r *Runner) resolve(label string, fallback *domtree.Node) *domtree.Node {
	if label == "" {
		return fallback
	}

	return r.nodes[label]
}

// attach creates spec's subtree detached, then inserts it under parent.
func (r *Runner) attach(spec NodeSpec, parent, before *domtree.Node) (*domtree.Node, error) {
	n := r.create(spec)
	for _, c := range spec.Children {
		if _, err := r.attach(c, n, nil); err != nil {
			return nil, err
		}
	}
	if before != nil {
		return n, parent.InsertBefore(n, before)
	}

	return n, parent.AppendChild(n)
}

func (r *Runner) create(spec NodeSpec) *domtree.Node {
	var n *domtree.Node
	switch {
	case spec.Tag == "":
		n = r.doc.CreateText(spec.Text)
	case spec.Tag == "slot":
		n = r.doc.CreateSlot(spec.Name)
	default:
		n = r.doc.CreateElement(spec.Tag)
	}
	if spec.Slot != "" {
		n.SetAttribute(domtree.SlotAttr, spec.Slot)
	}
	for k, v := range spec.Attrs {
		n.SetAttribute(k, v)
	}
	if spec.ID != "" {
		r.label(spec.ID, n)
	}

	return n
}

func (r *Runner) label(label string, n *domtree.Node) {
	r.nodes[label] = n
	r.labels[n.NodeID()] = label
}

func (r *Runner) name(id types.NodeID) string {
	if l, ok := r.labels[id]; ok {
		return l
	}

	return fmt.Sprintf("#%d", id)
}

func (r *Runner) flush(ctx context.Context) error {
	return r.sa.Flush(ctx, r.dispatcher)
}

// print writes one line per notification.
func (r *Runner) print(_ context.Context, batch []types.Notification) error {
	for _, n := range batch {
		slot := "-"
		if id, ok := n.SlotID(); ok {
			slot = r.name(id)
		}
		nodes := make([]string, len(n.Nodes))
		for i, id := range n.Nodes {
			nodes[i] = r.name(id)
		}
		if _, err := fmt.Fprintf(r.out, "[step %d] slotchange name=%q slot=%s nodes=[%s]\n",
			r.step, n.Name, slot, strings.Join(nodes, ",")); err != nil {
			return err
		}
		r.printed++
	}
	r.logger.Debug("flushed", "step", r.step, "size", len(batch))

	return nil
}

// SlotState is the rendered state of one name, as dumped by Dump.
type SlotState struct {
	Slot  string
	Count int
	Nodes []string
}

// State returns the current assignment keyed by slot name.
func (r *Runner) State() map[string]SlotState {
	state := make(map[string]SlotState)
	for _, name := range r.sa.Names() {
		st := SlotState{Count: r.sa.SlotCount(name)}
		if slot, ok := r.sa.CanonicalSlot(name); ok {
			st.Slot = r.name(slot.NodeID())
			nodes, _ := r.sa.AssignedNodes(slot)
			for _, n := range nodes {
				st.Nodes = append(st.Nodes, r.name(n.NodeID()))
			}
		}
		state[name] = st
	}

	return state
}

// Dump writes the assignment state and bookkeeping counters with spew.
func (r *Runner) Dump() {
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	fmt.Fprintf(r.out, "# %s\n", r.sc.Name)
	cfg.Fdump(r.out, r.State())
	cfg.Fdump(r.out, r.sa.Stats())
	fmt.Fprintf(r.out, "fingerprint=%016x\n", r.sa.Fingerprint())
}
