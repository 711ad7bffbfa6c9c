package pipeline

import (
	"github.com/chilammps/vizflow/pkg/graph"
)

const TypeStageApplication graph.TypeID = "pipeline.stage_application"

var (
	appStageSpec = graph.FieldSpec{Name: "stage", Accepts: IsStage}
	appInputSpec = graph.FieldSpec{Name: "input", Accepts: isUpstream}
)

// The input of an application is either the previous application in the
// chain or, for the head, the pipeline's source.
func isUpstream(n graph.Node) bool {
	if _, ok := n.(*StageApplication); ok {
		return true
	}

	return IsSource(n)
}

// StageApplication is one position in a pipeline chain: it pairs a stage
// with its input (the previous application, or the source for the head) and
// caches the most recently computed flow state. The cache has two states:
// empty, or holding a state valid over that state's validity interval. Any
// TargetChanged from the stage's parameters or from anywhere upstream drops
// it back to empty.
type StageApplication struct {
	graph.BaseNode

	stage *graph.Ref
	input *graph.Ref

	cache *FlowState
}

// NewStageApplication wraps a stage for use in a chain.
func NewStageApplication(g *graph.Graph, stage Stage) (*StageApplication, error) {
	a := &StageApplication{}
	a.Init(a, g, TypeStageApplication)
	a.stage = a.NewRef(appStageSpec)
	a.input = a.NewRef(appInputSpec)

	if err := a.stage.Set(stage); err != nil {
		return nil, err
	}

	return a, nil
}

// Stage returns the wrapped stage.
func (a *StageApplication) Stage() Stage {
	s, _ := a.stage.Get().(Stage)
	return s
}

// Upstream returns the previous application in the chain, or nil when the
// application is the head.
func (a *StageApplication) Upstream() *StageApplication {
	u, _ := a.input.Get().(*StageApplication)
	return u
}

// Input returns whatever the application reads from: the previous
// application, the source, or nil.
func (a *StageApplication) Input() graph.Node { return a.input.Get() }

func (a *StageApplication) setInput(in graph.Node) error {
	a.Invalidate()

	return a.input.Set(in)
}

// Cached returns the cached flow state, if any.
func (a *StageApplication) Cached() (*FlowState, bool) {
	return a.cache, a.cache != nil
}

// Invalidate drops the cached result.
func (a *StageApplication) Invalidate() { a.cache = nil }

// HandleReferenceEvent invalidates the cache on any change or deletion of
// the stage or the input, then re-raises so that downstream applications
// collapse as well.
func (a *StageApplication) HandleReferenceEvent(source graph.Node, event graph.Event) bool {
	switch event.GetType() {
	case graph.EventTargetChanged, graph.EventTargetDeleted:
		a.cache = nil
	}

	return true
}
