// Package graph implements the reactive object graph: reference-counted
// nodes with typed fields, dependents bookkeeping, revision counters and
// synchronous change propagation.
//
// Every inter-node edge goes through a Ref or RefList field, so the set of
// dependents of a node always mirrors the set of nodes holding a live
// reference to it. Mutations may only happen on the goroutine that created
// the Graph (the model thread).
package graph

import (
	"github.com/google/uuid"
)

// TypeID identifies a node type. Factories and reference-field target
// constraints are keyed by it.
type TypeID string

// Node is the interface implemented by every graph entity. Concrete types
// embed BaseNode and call Init from their constructor.
type Node interface {
	base() *BaseNode

	TypeID() TypeID
	UID() string
	Graph() *Graph
	Revision() uint64
	Alive() bool

	// HandleReferenceEvent processes an event originating from a node this
	// node references. The return value reports whether a TargetChanged
	// event should be translated into this node's own TargetChanged and
	// passed on to its dependents.
	HandleReferenceEvent(source Node, event Event) bool
}

// BaseNode holds the graph bookkeeping shared by all node types. It must be
// initialized with Init before the node participates in the graph.
type BaseNode struct {
	self   Node
	graph  *Graph
	typeID TypeID
	uid    string

	fields     []Field
	dependents []dependentEntry

	revision uint64
	refs     int
	alive    bool
}

// One entry per referencing node; edges counts how many live field edges
// from that node point here.
type dependentEntry struct {
	node  Node
	edges int
}

// Init wires the embedded BaseNode to its outer type and graph. self must be
// the outer node so that event handling dispatches to overridden methods.
func (b *BaseNode) Init(self Node, g *Graph, typeID TypeID) {
	b.self = self
	b.graph = g
	b.typeID = typeID
	b.uid = uuid.NewString()
	b.alive = true
}

func (b *BaseNode) base() *BaseNode { return b }

func (b *BaseNode) TypeID() TypeID { return b.typeID }

func (b *BaseNode) UID() string { return b.uid }

func (b *BaseNode) Graph() *Graph { return b.graph }

// Revision returns the node's logical version. It is bumped exactly once per
// TargetChanged event this node raises.
func (b *BaseNode) Revision() uint64 { return b.revision }

// Alive reports whether the node has not been disposed.
func (b *BaseNode) Alive() bool { return b.alive }

// HandleReferenceEvent is the default handler: re-raise TargetChanged so
// that changes propagate upward through arbitrarily deep chains.
func (b *BaseNode) HandleReferenceEvent(source Node, event Event) bool {
	return true
}

// Fields returns the node's ordered field list.
func (b *BaseNode) Fields() []Field { return b.fields }

// Dependents returns a deduplicated snapshot of the nodes currently holding
// a reference to this node.
func (b *BaseNode) Dependents() []Node {
	out := make([]Node, 0, len(b.dependents))
	for _, d := range b.dependents {
		out = append(out, d.node)
	}

	return out
}

// HasDependent reports whether n holds at least one reference to this node.
func (b *BaseNode) HasDependent(n Node) bool {
	for _, d := range b.dependents {
		if d.node == n {
			return true
		}
	}

	return false
}

// NotifyChanged bumps the revision counter and raises TargetChanged to all
// dependents. Concrete types call this after mutating state that is not held
// in a field (for example the payload of a data container).
func (b *BaseNode) NotifyChanged() {
	b.graph.assertModelThread()
	b.revision++
	b.graph.notifyDependents(b.self, TargetChanged{BaseEvent{b.self}})
}

func (b *BaseNode) addDependent(n Node) {
	for i := range b.dependents {
		if b.dependents[i].node == n {
			b.dependents[i].edges++
			return
		}
	}

	b.dependents = append(b.dependents, dependentEntry{node: n, edges: 1})
}

func (b *BaseNode) removeDependent(n Node) {
	for i := range b.dependents {
		if b.dependents[i].node == n {
			b.dependents[i].edges--
			if b.dependents[i].edges == 0 {
				b.dependents = append(b.dependents[:i], b.dependents[i+1:]...)
			}

			return
		}
	}
}

func (b *BaseNode) retain() { b.refs++ }

func (b *BaseNode) release() {
	b.refs--
	if b.refs <= 0 && b.alive {
		b.dispose()
	}
}

// dispose tears the node down once the last strong reference is gone. Weak
// holders are informed via TargetDeleted and clear their fields; the node's
// own references are released, which may cascade.
func (b *BaseNode) dispose() {
	b.alive = false

	b.graph.logger.Debug("Disposing node", "type", b.typeID, "uid", b.uid)

	b.graph.notifyDependents(b.self, TargetDeleted{BaseEvent{b.self}})

	for _, f := range b.fields {
		f.clearForDispose()
	}
}

// edgePolicy inspects the fields of this node that reference source and
// folds their flags through the graph's propagation policy. A node connected
// through several fields is delivered to if any edge allows delivery.
func (b *BaseNode) edgePolicy(source Node, p PropagationPolicy) (deliver, propagate bool) {
	for _, f := range b.fields {
		if !f.references(source) {
			continue
		}

		flags := f.Flags()
		deliver = deliver || p.delivers(flags)
		propagate = propagate || p.propagates(flags)
	}

	return deliver, propagate
}

// clearRefsTo drops every remaining reference to a node that is being
// disposed. Only weak fields can still point at it at that moment.
func (b *BaseNode) clearRefsTo(target Node) {
	for _, f := range b.fields {
		f.dropTarget(target)
	}
}
