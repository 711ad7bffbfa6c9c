package colorcode

import (
	"fmt"

	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/stages/config"
)

// Factory creates colorcode stages from configuration maps.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Create(g *graph.Graph, cfg map[string]any) (pipeline.Stage, error) {
	axis := config.Axis(cfg, "axis")
	start := config.Float(cfg, "start", 0)
	end := config.Float(cfg, "end", 1)
	s := New(g, axis, start, end)

	// Keyframes animate the gradient end value.
	ctrl, err := config.Keyframes(g, cfg)
	if err != nil {
		return nil, fmt.Errorf("colorcode stage: %w", err)
	}

	if ctrl != nil {
		if err := s.End().BindController(ctrl); err != nil {
			return nil, fmt.Errorf("colorcode stage: %w", err)
		}
	}

	return s, nil
}

func (f *Factory) ID() string { return "colorcode" }

func (f *Factory) Name() string { return "Color coding" }

func (f *Factory) Description() string {
	return "Colors points by mapping a position coordinate onto a blue-to-red gradient."
}

func (f *Factory) Schema() map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"axis": config.AxisProperty("Position coordinate driving the gradient."),
			"start": map[string]any{
				"type":        "number",
				"description": "Coordinate mapped to the blue end of the gradient.",
			},
			"end": map[string]any{
				"type":        "number",
				"description": "Coordinate mapped to the red end of the gradient.",
			},
		},
	}

	config.AddKeyframeProperties(schema)

	return schema
}
