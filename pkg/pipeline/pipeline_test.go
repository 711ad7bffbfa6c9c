package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
)

const (
	typeFakeSource    graph.TypeID = "test.source"
	typeCountingStage graph.TypeID = "test.counting"
)

// fakeSource counts evaluations and can simulate a load in flight.
type fakeSource struct {
	graph.BaseNode

	evals   int
	pending bool
}

func newFakeSource(g *graph.Graph) *fakeSource {
	s := &fakeSource{}
	s.Init(s, g, typeFakeSource)

	return s
}

func (s *fakeSource) Evaluate(t anim.Time) *FlowState {
	s.evals++

	if s.pending {
		state := EmptyState()
		state.MergeStatus(Pending("loading"))

		return state
	}

	return NewFlowState(nil, anim.Forever())
}

// countingStage counts applications and reports a configurable validity
// and status.
type countingStage struct {
	StageNode

	param *graph.Value

	applies  int
	validity anim.Interval
	status   Status
}

func newCountingStage(g *graph.Graph) *countingStage {
	s := &countingStage{validity: anim.Forever()}
	s.InitStage(s, g, typeCountingStage)
	s.param = s.NewValue(graph.FieldSpec{Name: "param"}, 0.0)

	return s
}

func (s *countingStage) Validity(t anim.Time) anim.Interval { return s.validity }

func (s *countingStage) Apply(t anim.Time, state *FlowState) Status {
	s.applies++
	return s.status
}

func buildChain(t *testing.T, stageCount int) (*Pipeline, *fakeSource, []*countingStage) {
	t.Helper()

	g := graph.New(nil)
	src := newFakeSource(g)

	p, err := New(g, nil, src)
	require.NoError(t, err)

	stages := make([]*countingStage, stageCount)
	for i := range stages {
		stages[i] = newCountingStage(g)
		_, err := p.AppendStage(stages[i])
		require.NoError(t, err)
	}

	return p, src, stages
}

func TestEvaluateCachesResult(t *testing.T) {
	p, src, stages := buildChain(t, 3)

	first := p.Evaluate(0)
	assert.Equal(t, 1, src.evals)

	for _, s := range stages {
		assert.Equal(t, 1, s.applies)
	}

	// A second request inside the cached validity returns the cached state
	// without touching source or stages.
	second := p.Evaluate(0)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.evals)

	for _, s := range stages {
		assert.Equal(t, 1, s.applies)
	}
}

func TestParameterChangeRecomputesDownstreamOnly(t *testing.T) {
	p, src, stages := buildChain(t, 3)

	p.Evaluate(0)

	stages[1].param.Set(2.0)

	p.Evaluate(0)

	assert.Equal(t, 1, src.evals)
	assert.Equal(t, 1, stages[0].applies)
	assert.Equal(t, 2, stages[1].applies)
	assert.Equal(t, 2, stages[2].applies)
}

func TestSourceChangeInvalidatesWholeChain(t *testing.T) {
	p, src, stages := buildChain(t, 2)

	p.Evaluate(0)
	src.NotifyChanged()
	p.Evaluate(0)

	assert.Equal(t, 2, src.evals)
	assert.Equal(t, 2, stages[0].applies)
	assert.Equal(t, 2, stages[1].applies)
}

func TestValidityNarrows(t *testing.T) {
	p, _, stages := buildChain(t, 2)
	stages[0].validity = anim.Interval{Start: 0, End: 10}
	stages[1].validity = anim.Interval{Start: 5, End: 20}

	state := p.Evaluate(7)
	assert.Equal(t, anim.Interval{Start: 5, End: 10}, state.Validity())
}

func TestCacheMissOutsideValidity(t *testing.T) {
	p, _, stages := buildChain(t, 1)
	stages[0].validity = anim.Interval{Start: 0, End: 10}

	p.Evaluate(0)
	assert.Equal(t, 1, stages[0].applies)

	p.Evaluate(5)
	assert.Equal(t, 1, stages[0].applies)

	p.Evaluate(50)
	assert.Equal(t, 2, stages[0].applies)
}

func TestDisabledStagePassesThrough(t *testing.T) {
	p, _, stages := buildChain(t, 2)
	stages[0].validity = anim.Interval{Start: 0, End: 10}

	stages[0].SetEnabled(false)

	state := p.Evaluate(0)

	assert.Equal(t, 0, stages[0].applies)
	assert.Equal(t, 1, stages[1].applies)
	// A disabled stage contributes neither work nor validity narrowing.
	assert.True(t, state.Validity().IsInfinite())
}

func TestErrorDoesNotAbortChain(t *testing.T) {
	p, _, stages := buildChain(t, 3)
	stages[1].status = Errorf("boom")

	state := p.Evaluate(0)

	assert.Equal(t, 1, stages[2].applies)
	assert.Equal(t, StatusError, state.Status().Kind)
	assert.Equal(t, "boom", state.Status().Message)
}

func TestPendingOutranksError(t *testing.T) {
	p, src, stages := buildChain(t, 1)
	src.pending = true
	stages[0].status = Errorf("boom")

	state := p.Evaluate(0)
	assert.Equal(t, StatusPending, state.Status().Kind)

	// Pending states are never cached.
	p.Evaluate(0)
	assert.Equal(t, 2, src.evals)
}

func TestEditingStageFormsCacheBoundary(t *testing.T) {
	p, src, stages := buildChain(t, 3)
	stages[1].validity = anim.Never()

	p.Evaluate(0)
	p.Evaluate(0)

	// The stage upstream of the edited one stays cached; the edited stage
	// and everything downstream recompute every time.
	assert.Equal(t, 1, src.evals)
	assert.Equal(t, 1, stages[0].applies)
	assert.Equal(t, 2, stages[1].applies)
	assert.Equal(t, 2, stages[2].applies)
}

func TestHeadApplicationReadsSource(t *testing.T) {
	p, src, _ := buildChain(t, 2)

	apps := p.Applications()
	require.Len(t, apps, 2)
	assert.Equal(t, graph.Node(src), apps[0].Input())
	assert.Equal(t, graph.Node(apps[0]), apps[1].Input())
	assert.Nil(t, apps[0].Upstream())
	assert.Equal(t, apps[0], apps[1].Upstream())
}

func TestInsertStageAtHeadRewires(t *testing.T) {
	p, src, _ := buildChain(t, 1)

	oldHead := p.Applications()[0]

	inserted := newCountingStage(oldHead.Graph())
	app, err := p.InsertStage(0, inserted)
	require.NoError(t, err)

	assert.Equal(t, graph.Node(src), app.Input())
	assert.Equal(t, graph.Node(app), oldHead.Input())
}

func TestRemoveStageRewires(t *testing.T) {
	p, src, stages := buildChain(t, 3)
	apps := p.Applications()

	require.NoError(t, p.RemoveStage(apps[1]))

	remaining := p.Applications()
	require.Len(t, remaining, 2)
	assert.Equal(t, graph.Node(apps[0]), remaining[1].Input())

	p.Evaluate(0)

	assert.Equal(t, 1, src.evals)
	assert.Equal(t, 0, stages[1].applies)
	assert.Equal(t, 1, stages[2].applies)
}

func TestRemoveForeignStageFails(t *testing.T) {
	p, _, _ := buildChain(t, 1)
	g := graph.New(nil)

	foreign, err := NewStageApplication(g, newCountingStage(g))
	require.NoError(t, err)

	assert.Error(t, p.RemoveStage(foreign))
}

func TestEvaluateWithoutSource(t *testing.T) {
	g := graph.New(nil)

	p, err := New(g, nil, nil)
	require.NoError(t, err)

	state := p.Evaluate(0)
	assert.Equal(t, StatusError, state.Status().Kind)
}

func TestSetSourceRewiresHead(t *testing.T) {
	p, src, stages := buildChain(t, 1)

	p.Evaluate(0)

	replacement := newFakeSource(p.Graph())
	require.NoError(t, p.SetSource(replacement))

	p.Evaluate(0)

	assert.Equal(t, 1, src.evals)
	assert.Equal(t, 1, replacement.evals)
	assert.Equal(t, 2, stages[0].applies)
	assert.Equal(t, graph.Node(replacement), p.Applications()[0].Input())
}
