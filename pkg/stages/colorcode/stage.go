// Package colorcode provides a stage that maps a position coordinate to a
// blue-to-red color gradient.
package colorcode

import (
	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

const TypeID graph.TypeID = "stage.colorcode"

var (
	axisSpec  = graph.FieldSpec{Name: "axis"}
	startSpec = graph.FieldSpec{Name: "start"}
	endSpec   = graph.FieldSpec{Name: "end"}
)

// Stage colors every point by where its coordinate along the selected axis
// falls between the start and end values. Coordinates at or below start map
// to blue, at or above end to red.
type Stage struct {
	pipeline.StageNode

	axis  *graph.Value
	start *graph.Value
	end   *graph.Value
}

func New(g *graph.Graph, axis int, start, end float64) *Stage {
	s := &Stage{}
	s.InitStage(s, g, TypeID)
	s.axis = s.NewValue(axisSpec, axis)
	s.start = s.NewValue(startSpec, start)
	s.end = s.NewValue(endSpec, end)

	return s
}

func (s *Stage) Axis() int { return s.axis.Get().(int) }

// Start exposes the gradient start field.
func (s *Stage) Start() *graph.Value { return s.start }

// End exposes the gradient end field, e.g. to bind a controller to it.
func (s *Stage) End() *graph.Value { return s.end }

func (s *Stage) Validity(t anim.Time) anim.Interval {
	_, startValidity := anim.AnimatedFloat(s.start, t)
	_, endValidity := anim.AnimatedFloat(s.end, t)

	return startValidity.Intersect(endValidity)
}

func (s *Stage) Apply(t anim.Time, state *pipeline.FlowState) pipeline.Status {
	points := state.PointSet()
	if points == nil {
		return pipeline.Warning("colorcode: no point data in input")
	}

	start, _ := anim.AnimatedFloat(s.start, t)
	end, _ := anim.AnimatedFloat(s.end, t)
	axis := s.Axis()

	positions := points.Positions()
	colors := make([][3]float64, len(positions))

	for i, p := range positions {
		colors[i] = gradient(fraction(p[axis], start, end))
	}

	out := points.Copy()
	out.SetColors(colors)
	state.ReplaceObject(points, out)

	return pipeline.Success()
}

func fraction(v, start, end float64) float64 {
	if start == end {
		return 0
	}

	f := (v - start) / (end - start)

	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}

	return f
}

// gradient maps [0,1] to a blue-to-red ramp through white.
func gradient(f float64) [3]float64 {
	if f < 0.5 {
		g := 2 * f
		return [3]float64{g, g, 1}
	}

	g := 2 * (1 - f)

	return [3]float64{1, g, g}
}
