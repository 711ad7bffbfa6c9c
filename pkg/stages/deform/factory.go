package deform

import (
	"fmt"

	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/stages/config"
)

// Factory creates deform stages from configuration maps.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Create(g *graph.Graph, cfg map[string]any) (pipeline.Stage, error) {
	factor := config.Float(cfg, "factor", 1)
	s := New(g, factor)

	ctrl, err := config.Keyframes(g, cfg)
	if err != nil {
		return nil, fmt.Errorf("deform stage: %w", err)
	}

	if ctrl != nil {
		if err := s.Factor().BindController(ctrl); err != nil {
			return nil, fmt.Errorf("deform stage: %w", err)
		}
	}

	return s, nil
}

func (f *Factory) ID() string { return "deform" }

func (f *Factory) Name() string { return "Deform" }

func (f *Factory) Description() string {
	return "Scales point positions by a uniform factor. The factor can be keyframed."
}

func (f *Factory) Schema() map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"factor": map[string]any{
				"type":        "number",
				"description": "Uniform scale factor applied to every position.",
			},
		},
	}

	config.AddKeyframeProperties(schema)

	return schema
}
