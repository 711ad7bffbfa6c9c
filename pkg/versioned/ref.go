// Package versioned provides (node, revision) pairs for O(1) staleness
// checks: a consumer captures a reference once and later asks "did this
// exact state change" without walking or diffing the graph.
package versioned

import "github.com/chilammps/vizflow/pkg/graph"

// Ref pairs a node with the revision observed at capture time. It does not
// keep the node alive; the holder is expected to own a strong reference to
// it for as long as the Ref is used. Use WeakRef when that is not the case.
type Ref struct {
	node     graph.Node
	revision uint64
}

// Capture records n together with its current revision.
func Capture(n graph.Node) Ref {
	if n == nil {
		return Ref{}
	}

	return Ref{node: n, revision: n.Revision()}
}

// Node returns the captured node, or nil.
func (r Ref) Node() graph.Node { return r.node }

// Stale reports whether the node is nil or has raised a TargetChanged since
// the revision was captured.
func (r Ref) Stale() bool {
	return r.node == nil || r.node.Revision() != r.revision
}

// Refresh re-captures the node's current revision without changing identity.
func (r *Ref) Refresh() {
	if r.node != nil {
		r.revision = r.node.Revision()
	}
}

// WeakRef is a Ref that tolerates the pointee being disposed: once the node
// is gone it reports stale without touching the node's state.
type WeakRef struct {
	node     graph.Node
	revision uint64
}

// CaptureWeak records n together with its current revision without taking
// ownership of any kind.
func CaptureWeak(n graph.Node) WeakRef {
	if n == nil {
		return WeakRef{}
	}

	return WeakRef{node: n, revision: n.Revision()}
}

// Node returns the captured node if it is still alive, nil otherwise.
func (r WeakRef) Node() graph.Node {
	if r.node == nil || !r.node.Alive() {
		return nil
	}

	return r.node
}

// Stale reports whether the node is nil, disposed, or has changed since
// capture.
func (r WeakRef) Stale() bool {
	if r.node == nil || !r.node.Alive() {
		return true
	}

	return r.node.Revision() != r.revision
}

// Refresh re-captures the current revision. A disposed node stays stale.
func (r *WeakRef) Refresh() {
	if r.node != nil && r.node.Alive() {
		r.revision = r.node.Revision()
	}
}
