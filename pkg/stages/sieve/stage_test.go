package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

func stateWithPoints(g *graph.Graph, positions, colors [][3]float64) *pipeline.FlowState {
	points := data.NewPointSet(g)
	points.SetPositions(positions)

	if colors != nil {
		points.SetColors(colors)
	}

	state := pipeline.NewFlowState(nil, anim.Forever())
	state.AddObject(points)

	return state
}

func TestApplyFiltersByLimit(t *testing.T) {
	g := graph.New(nil)
	s := New(g, 0, 1.5)

	state := stateWithPoints(g, [][3]float64{{1, 0, 0}, {2, 0, 0}, {1.5, 0, 0}}, nil)

	status := s.Apply(0, state)
	require.Equal(t, pipeline.StatusSuccess, status.Kind)

	assert.Equal(t, [][3]float64{{1, 0, 0}, {1.5, 0, 0}}, state.PointSet().Positions())
}

func TestApplyKeepsColorsAligned(t *testing.T) {
	g := graph.New(nil)
	s := New(g, 1, 0.5)

	positions := [][3]float64{{0, 0, 0}, {0, 1, 0}, {0, 0.25, 0}}
	colors := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	state := stateWithPoints(g, positions, colors)
	s.Apply(0, state)

	out := state.PointSet()
	assert.Equal(t, [][3]float64{{0, 0, 0}, {0, 0.25, 0}}, out.Positions())
	assert.Equal(t, [][3]float64{{1, 0, 0}, {0, 0, 1}}, out.Colors())
}

func TestApplyAllFilteredWarns(t *testing.T) {
	g := graph.New(nil)
	s := New(g, 0, -1)

	state := stateWithPoints(g, [][3]float64{{0, 0, 0}}, nil)

	status := s.Apply(0, state)
	assert.Equal(t, pipeline.StatusWarning, status.Kind)
	assert.Equal(t, 0, state.PointSet().Len())
}

func TestAnimatedLimitSweeps(t *testing.T) {
	g := graph.New(nil)
	s := New(g, 0, 0)

	ctrl := anim.NewKeyframeController(g, anim.InterpolationStep)
	ctrl.SetKeys([]anim.Key{{Time: 0, Value: 0.5}, {Time: 100, Value: 2.5}})
	require.NoError(t, s.Limit().BindController(ctrl))

	positions := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}

	state := stateWithPoints(g, positions, nil)
	s.Apply(0, state)
	assert.Equal(t, 1, state.PointSet().Len())

	state = stateWithPoints(g, positions, nil)
	s.Apply(100, state)
	assert.Equal(t, 3, state.PointSet().Len())
}

func TestFactoryCreate(t *testing.T) {
	g := graph.New(nil)
	f := NewFactory()

	stage, err := f.Create(g, map[string]any{"axis": "z", "limit": 0.0})
	require.NoError(t, err)

	state := stateWithPoints(g, [][3]float64{{0, 0, -1}, {0, 0, 1}}, nil)
	stage.Apply(0, state)

	assert.Equal(t, [][3]float64{{0, 0, -1}}, state.PointSet().Positions())
}
