package versioned

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chilammps/vizflow/pkg/graph"
)

const typeProbe graph.TypeID = "test.probe"

type probeNode struct {
	graph.BaseNode
}

func newProbeNode(g *graph.Graph) *probeNode {
	n := &probeNode{}
	n.Init(n, g, typeProbe)

	return n
}

func TestRefStaleness(t *testing.T) {
	g := graph.New(nil)
	n := newProbeNode(g)

	ref := Capture(n)
	assert.False(t, ref.Stale())
	assert.Equal(t, graph.Node(n), ref.Node())

	n.NotifyChanged()
	assert.True(t, ref.Stale())

	ref.Refresh()
	assert.False(t, ref.Stale())
}

func TestNilRefIsStale(t *testing.T) {
	ref := Capture(nil)
	assert.True(t, ref.Stale())
	assert.Nil(t, ref.Node())

	ref.Refresh()
	assert.True(t, ref.Stale())
}

func TestWeakRefTracksDisposal(t *testing.T) {
	g := graph.New(nil)
	n := newProbeNode(g)
	keep := g.Retain(n)

	ref := CaptureWeak(n)
	assert.False(t, ref.Stale())
	assert.Equal(t, graph.Node(n), ref.Node())

	keep.Release()

	assert.True(t, ref.Stale())
	assert.Nil(t, ref.Node())

	// A disposed node cannot become fresh again.
	ref.Refresh()
	assert.True(t, ref.Stale())
}

func TestWeakRefStaleAfterChange(t *testing.T) {
	g := graph.New(nil)
	n := newProbeNode(g)
	keep := g.Retain(n)
	defer keep.Release()

	ref := CaptureWeak(n)
	n.NotifyChanged()

	assert.True(t, ref.Stale())

	ref.Refresh()
	assert.False(t, ref.Stale())
}
