// Package data defines the result objects that flow through an evaluation
// pipeline. They are graph nodes so consumers (renderers) can use their
// revision counters to decide when GPU-side buffers must be rebuilt.
package data

import (
	"github.com/chilammps/vizflow/pkg/graph"
)

// Object is a result payload carried by a pipeline flow state.
type Object interface {
	graph.Node

	// Kind is a short label used in logs and summaries.
	Kind() string
}

const TypePointSet graph.TypeID = "data.points"

// RegisterTypes registers the data object factories with a graph.
func RegisterTypes(g *graph.Graph) {
	g.RegisterType(TypePointSet, func(g *graph.Graph) graph.Node {
		return NewPointSet(g)
	})
}

// PointSet is a container of points with optional per-point colors. The
// payload slices are not graph fields; mutations go through the setters,
// which bump the revision, or through Copy for copy-on-write in stages.
type PointSet struct {
	graph.BaseNode

	positions [][3]float64
	colors    [][3]float64
}

func NewPointSet(g *graph.Graph) *PointSet {
	p := &PointSet{}
	p.Init(p, g, TypePointSet)

	return p
}

func (p *PointSet) Kind() string { return "points" }

// Len returns the number of points.
func (p *PointSet) Len() int { return len(p.positions) }

// Positions returns the position array. Callers must not mutate it; use
// SetPositions or Copy instead.
func (p *PointSet) Positions() [][3]float64 { return p.positions }

// Colors returns the per-point colors, or nil when none are assigned.
func (p *PointSet) Colors() [][3]float64 { return p.colors }

// SetPositions replaces the position array and raises TargetChanged.
func (p *PointSet) SetPositions(positions [][3]float64) {
	p.positions = positions
	p.NotifyChanged()
}

// SetColors replaces the color array and raises TargetChanged.
func (p *PointSet) SetColors(colors [][3]float64) {
	p.colors = colors
	p.NotifyChanged()
}

// Copy returns a new PointSet with deep-copied payload. Stages copy an
// input object before modifying it so that upstream caches stay intact.
func (p *PointSet) Copy() *PointSet {
	c := NewPointSet(p.Graph())

	c.positions = make([][3]float64, len(p.positions))
	copy(c.positions, p.positions)

	if p.colors != nil {
		c.colors = make([][3]float64, len(p.colors))
		copy(c.colors, p.colors)
	}

	return c
}
