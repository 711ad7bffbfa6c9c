// Package registry maps stage type identifiers to factories so that scene
// descriptions can instantiate stages by name.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

type Registry struct {
	logger         *slog.Logger
	stageFactories map[string]pipeline.StageFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger:         logger,
		stageFactories: make(map[string]pipeline.StageFactory),
	}
}

func (r *Registry) RegisterStage(factory pipeline.StageFactory) {
	r.stageFactories[factory.ID()] = factory
}

// CreateStage validates the configuration against the factory's schema and
// builds the stage in the given graph.
func (r *Registry) CreateStage(g *graph.Graph, stageType string, config map[string]any) (pipeline.Stage, error) {
	factory, ok := r.stageFactories[stageType]
	if !ok {
		return nil, fmt.Errorf("stage type '%s' not registered", stageType)
	}

	if err := r.ValidateStage(stageType, config); err != nil {
		return nil, err
	}

	return factory.Create(g, config)
}

// ValidateStage checks a configuration against the registered schema
// without instantiating the stage.
func (r *Registry) ValidateStage(stageType string, config map[string]any) error {
	factory, ok := r.stageFactories[stageType]
	if !ok {
		return fmt.Errorf("stage type '%s' not registered", stageType)
	}

	if err := validateConfig(config, factory.Schema()); err != nil {
		return fmt.Errorf("stage type '%s': %w", stageType, err)
	}

	return nil
}

// GetStageFactory retrieves a registered factory by its type identifier.
func (r *Registry) GetStageFactory(stageType string) (pipeline.StageFactory, bool) {
	factory, ok := r.stageFactories[stageType]
	return factory, ok
}

// AvailableStages returns the registered stage type identifiers, sorted.
func (r *Registry) AvailableStages() []string {
	types := make([]string, 0, len(r.stageFactories))
	for stageType := range r.stageFactories {
		types = append(types, stageType)
	}

	sort.Strings(types)

	return types
}
