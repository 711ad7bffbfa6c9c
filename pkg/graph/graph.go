package graph

import (
	"fmt"
	"log/slog"

	"github.com/petermattis/goid"
)

// FactoryFunc instantiates a blank node of one type. The returned node must
// have called Init and declared all of its fields.
type FactoryFunc func(g *Graph) Node

// Journal receives reference mutation events for external collaborators
// (undo stack, UI lists). Records are buffered by the implementation and
// Flush is called once the notification wave that produced them has fully
// settled, never in the middle of one.
type Journal interface {
	Record(event Event)
	Flush()
}

// Graph owns a set of nodes and the services they share: the node type
// registry, the event propagation policy and the mutation journal. All
// mutations must happen on the goroutine that created the Graph.
type Graph struct {
	logger    *slog.Logger
	policy    PropagationPolicy
	journal   Journal
	factories map[TypeID]FactoryFunc

	gid  int64
	wave *wave
}

// New creates an empty graph bound to the calling goroutine.
func New(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}

	return &Graph{
		logger:    logger.With("module", "graph"),
		policy:    DefaultPolicy(),
		factories: make(map[TypeID]FactoryFunc),
		gid:       goid.Get(),
	}
}

// SetJournal installs the mutation journal. Pass nil to disable journaling.
func (g *Graph) SetJournal(j Journal) { g.journal = j }

// SetPolicy replaces the event propagation policy.
func (g *Graph) SetPolicy(p PropagationPolicy) { g.policy = p }

// Policy returns the current event propagation policy.
func (g *Graph) Policy() PropagationPolicy { return g.policy }

// RegisterType registers a node factory under its type id. Required for
// types that participate in cloning or are created from scene descriptions.
func (g *Graph) RegisterType(id TypeID, fn FactoryFunc) {
	g.factories[id] = fn
}

// NewNode instantiates a registered node type.
func (g *Graph) NewNode(id TypeID) (Node, error) {
	fn, ok := g.factories[id]
	if !ok {
		return nil, fmt.Errorf("node type %q: %w", id, ErrUnknownType)
	}

	return fn(g), nil
}

// Handle is an external strong reference keeping a node alive, the
// counterpart of a strong Ref field for owners outside the graph.
type Handle struct {
	node Node
}

// Retain takes a strong reference on n and returns the owning handle.
func (g *Graph) Retain(n Node) *Handle {
	g.assertModelThread()
	n.base().retain()

	return &Handle{node: n}
}

// Node returns the held node, or nil after Release.
func (h *Handle) Node() Node { return h.node }

// Release drops the strong reference. The node is disposed if this was the
// last one. Releasing twice is a no-op.
func (h *Handle) Release() {
	if h.node == nil {
		return
	}

	n := h.node
	h.node = nil
	n.base().release()
}

func (g *Graph) assertModelThread() {
	if goid.Get() != g.gid {
		panic("graph: mutation outside the model thread")
	}
}

func (g *Graph) journalRecord(flags FieldFlags, ev Event) {
	if g.journal == nil || flags.Has(FlagNoUndo) {
		return
	}

	g.journal.Record(ev)
}
