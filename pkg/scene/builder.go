package scene

import (
	"fmt"
	"log/slog"

	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/registry"
	"github.com/chilammps/vizflow/pkg/source"
	"github.com/chilammps/vizflow/pkg/tasks"
)

// Builder instantiates scene descriptions inside a graph.
type Builder struct {
	logger   *slog.Logger
	graph    *graph.Graph
	registry *registry.Registry
	pool     *tasks.Pool
}

func NewBuilder(logger *slog.Logger, g *graph.Graph, reg *registry.Registry, pool *tasks.Pool) *Builder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		logger:   logger.With("module", "scene"),
		graph:    g,
		registry: reg,
		pool:     pool,
	}
}

// Scene is a built scene: the pipeline with its source, kept alive by a
// graph handle for the scene's lifetime.
type Scene struct {
	Name     string
	Pipeline *pipeline.Pipeline
	Source   *source.FileSource

	handle *graph.Handle
}

// Close releases the scene's ownership of the pipeline. The pipeline and
// everything it references are disposed unless retained elsewhere.
func (s *Scene) Close() {
	s.handle.Release()
}

// Build creates the source, the stage chain and the pipeline for a
// description. Stage configs are validated against the registered schemas.
func (b *Builder) Build(desc *Description) (*Scene, error) {
	src := source.NewFileSource(b.graph, b.pool, b.logger, desc.Source.Path)

	p, err := pipeline.New(b.graph, b.logger, src)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", desc.Name, err)
	}

	handle := b.graph.Retain(p)

	for i, spec := range desc.Stages {
		stage, err := b.registry.CreateStage(b.graph, spec.Type, spec.Config)
		if err != nil {
			handle.Release()
			return nil, fmt.Errorf("scene %s, stage %d: %w", desc.Name, i, err)
		}

		if spec.Enabled != nil {
			stage.(interface{ SetEnabled(bool) }).SetEnabled(*spec.Enabled)
		}

		if _, err := p.AppendStage(stage); err != nil {
			handle.Release()
			return nil, fmt.Errorf("scene %s, stage %d (%s): %w", desc.Name, i, spec.Type, err)
		}
	}

	b.logger.Info("Scene built", "scene", desc.Name, "stages", len(desc.Stages))

	return &Scene{
		Name:     desc.Name,
		Pipeline: p,
		Source:   src,
		handle:   handle,
	}, nil
}
