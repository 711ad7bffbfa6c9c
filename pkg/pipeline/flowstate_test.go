package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
	"github.com/chilammps/vizflow/pkg/graph"
)

func TestStatusWorseOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Status
		want StatusKind
	}{
		{"success vs warning", Success(), Warning("w"), StatusWarning},
		{"warning vs error", Warning("w"), Errorf("e"), StatusError},
		{"error vs pending", Errorf("e"), Pending("p"), StatusPending},
		{"pending vs error", Pending("p"), Errorf("e"), StatusPending},
		{"equal keeps receiver", Errorf("first"), Errorf("second"), StatusError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Worse(tc.b).Kind)
		})
	}
}

func TestStatusWorseKeepsFirstMessageOnTie(t *testing.T) {
	s := Errorf("first").Worse(Errorf("second"))
	assert.Equal(t, "first", s.Message)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", Success().String())
	assert.Equal(t, "error: boom", Errorf("boom").String())
}

func TestEmptyStateNeverValid(t *testing.T) {
	s := EmptyState()
	assert.True(t, s.IsEmpty())
	assert.True(t, s.Validity().IsEmpty())
}

func TestReplaceObject(t *testing.T) {
	g := graph.New(nil)
	a := data.NewPointSet(g)
	b := data.NewPointSet(g)

	s := NewFlowState([]data.Object{a}, anim.Forever())
	require.True(t, s.ReplaceObject(a, b))
	assert.Same(t, b, s.Objects()[0])

	assert.False(t, s.ReplaceObject(a, b))
}

func TestPointSetAccessor(t *testing.T) {
	g := graph.New(nil)
	p := data.NewPointSet(g)

	s := NewFlowState([]data.Object{p}, anim.Forever())
	assert.Same(t, p, s.PointSet())

	assert.Nil(t, EmptyState().PointSet())
}

func TestCloneSharesObjectsNotContainers(t *testing.T) {
	g := graph.New(nil)
	p := data.NewPointSet(g)

	s := NewFlowState([]data.Object{p}, anim.Interval{Start: 0, End: 10})
	s.MergeStatus(Warning("w"))
	s.SetAttribute("source.frame", 3)

	c := s.Clone()
	assert.Same(t, p, c.Objects()[0])
	assert.Equal(t, s.Validity(), c.Validity())
	assert.Equal(t, s.Status(), c.Status())

	v, ok := c.Attribute("source.frame")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	// Growing the clone's object list leaves the original untouched.
	c.AddObject(data.NewPointSet(g))
	assert.Len(t, s.Objects(), 1)

	c.SetAttribute("extra", true)
	_, ok = s.Attribute("extra")
	assert.False(t, ok)
}

func TestIntersectValidityNarrows(t *testing.T) {
	s := NewFlowState(nil, anim.Interval{Start: 0, End: 10})
	s.IntersectValidity(anim.Interval{Start: 5, End: 20})

	assert.Equal(t, anim.Interval{Start: 5, End: 10}, s.Validity())
}
