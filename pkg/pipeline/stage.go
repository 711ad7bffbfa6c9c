// Package pipeline implements the cached evaluation engine: an ordered
// chain of stage applications that transforms a source's flow state per
// time point, caching each intermediate result together with the validity
// interval over which it may be reused.
package pipeline

import (
	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/graph"
)

// Stage is the contract a pipeline transformation must satisfy. Stages are
// graph nodes; all of their parameters must live in node fields so that
// parameter changes raise TargetChanged and revision-based caching stays
// correct. A stage must not keep hidden cross-call state.
type Stage interface {
	graph.Node

	// Apply transforms state in place at time t and reports the outcome.
	// On error the stage leaves whatever partial result it produced;
	// downstream stages still run.
	Apply(t anim.Time, state *FlowState) Status

	// Validity returns the interval around t over which the stage's own
	// parameters are constant. A stage being interactively edited returns
	// an empty interval, forcing a cache boundary right upstream of it.
	Validity(t anim.Time) anim.Interval

	// Enabled reports whether the stage participates in evaluation;
	// disabled stages pass their input through unchanged.
	Enabled() bool
}

// IsStage is the field target constraint for stage references.
func IsStage(n graph.Node) bool {
	_, ok := n.(Stage)
	return ok
}

// StageFactory creates stage instances from a configuration map and
// describes the stage type to registries and UIs.
type StageFactory interface {
	Create(g *graph.Graph, config map[string]any) (Stage, error)
	ID() string
	Name() string
	Description() string
	Schema() map[string]any
}

// Source produces the input flow state at the head of a pipeline. A source
// that loads data in the background returns a Pending status; the caller
// re-evaluates once the work completes.
type Source interface {
	graph.Node

	Evaluate(t anim.Time) *FlowState
}

// IsSource is the field target constraint for source references.
func IsSource(n graph.Node) bool {
	_, ok := n.(Source)
	return ok
}

var stageEnabledSpec = graph.FieldSpec{Name: "enabled"}

// StageNode supplies the enabled switch shared by stage implementations.
// Concrete stages embed it and call InitStage from their constructor.
type StageNode struct {
	graph.BaseNode

	enabled *graph.Value
}

// InitStage initializes the node and declares the enabled field.
func (s *StageNode) InitStage(self graph.Node, g *graph.Graph, typeID graph.TypeID) {
	s.Init(self, g, typeID)
	s.enabled = s.NewValue(stageEnabledSpec, true)
}

func (s *StageNode) Enabled() bool { return s.enabled.Bool() }

// SetEnabled toggles the stage; dependents are invalidated either way.
func (s *StageNode) SetEnabled(enabled bool) { s.enabled.Set(enabled) }
