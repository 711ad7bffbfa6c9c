package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
)

const TypePipeline graph.TypeID = "pipeline.pipeline"

var (
	pipeSourceSpec = graph.FieldSpec{Name: "source", Accepts: IsSource}
	pipeAppsSpec   = graph.FieldSpec{Name: "applications", Target: TypeStageApplication}
)

// Pipeline owns a source and an ordered chain of stage applications.
// Evaluation is lazy and cached per application: a request for a time
// contained in a cached validity interval returns in O(1), and a parameter
// change recomputes only the applications downstream of it.
type Pipeline struct {
	graph.BaseNode

	logger *slog.Logger
	source *graph.Ref
	apps   *graph.RefList
}

// New creates a pipeline reading from src.
func New(g *graph.Graph, logger *slog.Logger, src Source) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{logger: logger.With("module", "pipeline")}
	p.Init(p, g, TypePipeline)
	p.source = p.NewRef(pipeSourceSpec)
	p.apps = p.NewRefList(pipeAppsSpec)

	if src != nil {
		if err := p.source.Set(src); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Source returns the pipeline's input, or nil.
func (p *Pipeline) Source() Source {
	s, _ := p.source.Get().(Source)
	return s
}

// SetSource replaces the pipeline's input. The head application is rewired
// to the new source, so the whole chain recomputes on next evaluation.
func (p *Pipeline) SetSource(src Source) error {
	if err := p.source.Set(src); err != nil {
		return err
	}

	if p.apps.Len() > 0 {
		head := p.apps.Get(0).(*StageApplication)
		return head.setInput(src)
	}

	return nil
}

// Applications returns the chain in evaluation order.
func (p *Pipeline) Applications() []*StageApplication {
	out := make([]*StageApplication, 0, p.apps.Len())
	for _, n := range p.apps.All() {
		out = append(out, n.(*StageApplication))
	}

	return out
}

// AppendStage adds a stage at the end of the chain.
func (p *Pipeline) AppendStage(stage Stage) (*StageApplication, error) {
	return p.InsertStage(p.apps.Len(), stage)
}

// InsertStage wraps stage in a new application and splices it into the
// chain at index i. The application that used to be at i re-reads its input
// from the new one, so everything downstream recomputes on next evaluation.
func (p *Pipeline) InsertStage(i int, stage Stage) (*StageApplication, error) {
	if i < 0 || i > p.apps.Len() {
		return nil, fmt.Errorf("insert stage: index %d out of range", i)
	}

	app, err := NewStageApplication(p.Graph(), stage)
	if err != nil {
		return nil, err
	}

	var in graph.Node
	if i > 0 {
		in = p.apps.Get(i - 1).(*StageApplication)
	} else if src := p.Source(); src != nil {
		in = src
	}

	if err := app.setInput(in); err != nil {
		return nil, err
	}

	var next *StageApplication
	if i < p.apps.Len() {
		next = p.apps.Get(i).(*StageApplication)
	}

	if err := p.apps.Insert(i, app); err != nil {
		return nil, err
	}

	if next != nil {
		if err := next.setInput(app); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("Inserted stage", "stage", stage.TypeID(), "index", i)

	return app, nil
}

// RemoveStage unsplices an application from the chain. Its downstream
// neighbor is rewired to the removed application's upstream.
func (p *Pipeline) RemoveStage(app *StageApplication) error {
	i := p.apps.Index(app)
	if i < 0 {
		return fmt.Errorf("remove stage: application not part of this pipeline")
	}

	if i+1 < p.apps.Len() {
		next := p.apps.Get(i + 1).(*StageApplication)
		if err := next.setInput(app.Input()); err != nil {
			return err
		}
	}

	return p.apps.RemoveAt(i)
}

// Evaluate computes the pipeline output at time t. The returned state must
// be treated as read-only; it may be the cached instance. Its status is the
// worst status reported by any stage that contributed, and its validity is
// the intersection of every contributing stage's validity.
func (p *Pipeline) Evaluate(t anim.Time) *FlowState {
	apps := p.Applications()
	if len(apps) == 0 {
		return p.evaluateSource(t)
	}

	return p.evaluateApp(apps[len(apps)-1], t)
}

func (p *Pipeline) evaluateSource(t anim.Time) *FlowState {
	src := p.Source()
	if src == nil {
		state := EmptyState()
		state.MergeStatus(Errorf("pipeline has no source"))

		return state
	}

	return src.Evaluate(t)
}

func (p *Pipeline) evaluateApp(app *StageApplication, t anim.Time) *FlowState {
	if cached, ok := app.Cached(); ok && cached.Validity().Contains(t) {
		return cached
	}

	var in *FlowState

	switch input := app.Input().(type) {
	case *StageApplication:
		in = p.evaluateApp(input, t)
	case Source:
		in = input.Evaluate(t)
	default:
		in = p.evaluateSource(t)
	}

	state := in.Clone()

	if stage := app.Stage(); stage != nil && stage.Enabled() {
		state.IntersectValidity(stage.Validity(t))

		status := stage.Apply(t, state)
		state.MergeStatus(status)

		if status.Kind == StatusError {
			p.logger.Warn("Stage failed", "stage", stage.TypeID(), "time", t, "error", status.Message)
		}
	}

	app.cache = state

	return state
}
