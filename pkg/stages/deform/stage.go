// Package deform provides a stage that scales point positions by a
// uniform, optionally animated factor.
package deform

import (
	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

const TypeID graph.TypeID = "stage.deform"

var factorSpec = graph.FieldSpec{Name: "factor"}

// Stage multiplies every point position by a scale factor. The factor can
// be driven by an animation controller, in which case the stage's validity
// narrows to the controller's constancy interval.
type Stage struct {
	pipeline.StageNode

	factor *graph.Value
}

func New(g *graph.Graph, factor float64) *Stage {
	s := &Stage{}
	s.InitStage(s, g, TypeID)
	s.factor = s.NewValue(factorSpec, factor)

	return s
}

// Factor exposes the factor field, e.g. to bind a controller to it.
func (s *Stage) Factor() *graph.Value { return s.factor }

func (s *Stage) Validity(t anim.Time) anim.Interval {
	_, validity := anim.AnimatedFloat(s.factor, t)
	return validity
}

func (s *Stage) Apply(t anim.Time, state *pipeline.FlowState) pipeline.Status {
	points := state.PointSet()
	if points == nil {
		return pipeline.Warning("deform: no point data in input")
	}

	factor, _ := anim.AnimatedFloat(s.factor, t)

	in := points.Positions()
	scaled := make([][3]float64, len(in))

	for i, p := range in {
		scaled[i] = [3]float64{p[0] * factor, p[1] * factor, p[2] * factor}
	}

	out := points.Copy()
	out.SetPositions(scaled)
	state.ReplaceObject(points, out)

	return pipeline.Success()
}
