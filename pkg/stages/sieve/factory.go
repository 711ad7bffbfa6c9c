package sieve

import (
	"fmt"

	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/stages/config"
)

// Factory creates sieve stages from configuration maps.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Create(g *graph.Graph, cfg map[string]any) (pipeline.Stage, error) {
	axis := config.Axis(cfg, "axis")
	limit := config.Float(cfg, "limit", 0)
	s := New(g, axis, limit)

	ctrl, err := config.Keyframes(g, cfg)
	if err != nil {
		return nil, fmt.Errorf("sieve stage: %w", err)
	}

	if ctrl != nil {
		if err := s.Limit().BindController(ctrl); err != nil {
			return nil, fmt.Errorf("sieve stage: %w", err)
		}
	}

	return s, nil
}

func (f *Factory) ID() string { return "sieve" }

func (f *Factory) Name() string { return "Sieve" }

func (f *Factory) Description() string {
	return "Removes points whose coordinate along an axis exceeds a limit."
}

func (f *Factory) Schema() map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"axis": config.AxisProperty("Position coordinate the limit applies to."),
			"limit": map[string]any{
				"type":        "number",
				"description": "Points with a coordinate above this value are removed.",
			},
		},
	}

	config.AddKeyframeProperties(schema)

	return schema
}
