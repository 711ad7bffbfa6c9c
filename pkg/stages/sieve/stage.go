// Package sieve provides a stage that filters out points beyond a
// coordinate limit.
package sieve

import (
	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

const TypeID graph.TypeID = "stage.sieve"

var (
	axisSpec  = graph.FieldSpec{Name: "axis"}
	limitSpec = graph.FieldSpec{Name: "limit"}
)

// Stage keeps only the points whose coordinate along the selected axis is
// at or below a limit. The limit can be animated, which makes the filter
// sweep through the data over time.
type Stage struct {
	pipeline.StageNode

	axis  *graph.Value
	limit *graph.Value
}

func New(g *graph.Graph, axis int, limit float64) *Stage {
	s := &Stage{}
	s.InitStage(s, g, TypeID)
	s.axis = s.NewValue(axisSpec, axis)
	s.limit = s.NewValue(limitSpec, limit)

	return s
}

func (s *Stage) Axis() int { return s.axis.Get().(int) }

// Limit exposes the limit field, e.g. to bind a controller to it.
func (s *Stage) Limit() *graph.Value { return s.limit }

func (s *Stage) Validity(t anim.Time) anim.Interval {
	_, validity := anim.AnimatedFloat(s.limit, t)
	return validity
}

func (s *Stage) Apply(t anim.Time, state *pipeline.FlowState) pipeline.Status {
	points := state.PointSet()
	if points == nil {
		return pipeline.Warning("sieve: no point data in input")
	}

	limit, _ := anim.AnimatedFloat(s.limit, t)
	axis := s.Axis()

	positions := points.Positions()
	colors := points.Colors()
	kept := make([][3]float64, 0, len(positions))

	var keptColors [][3]float64
	if len(colors) == len(positions) {
		keptColors = make([][3]float64, 0, len(positions))
	}

	for i, p := range positions {
		if p[axis] > limit {
			continue
		}

		kept = append(kept, p)

		if keptColors != nil {
			keptColors = append(keptColors, colors[i])
		}
	}

	out := points.Copy()
	out.SetPositions(kept)

	if keptColors != nil {
		out.SetColors(keptColors)
	}

	state.ReplaceObject(points, out)

	if len(kept) == 0 {
		return pipeline.Warning("sieve: all points filtered out")
	}

	return pipeline.Success()
}
