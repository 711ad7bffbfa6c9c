package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
	"github.com/chilammps/vizflow/pkg/eventbus"
	"github.com/chilammps/vizflow/pkg/graph"
	"github.com/chilammps/vizflow/pkg/log"
	"github.com/chilammps/vizflow/pkg/registry"
	"github.com/chilammps/vizflow/pkg/scene"
	"github.com/chilammps/vizflow/pkg/tasks"
)

// runtime bundles everything a command needs to build and evaluate a
// scene. The graph is bound to the goroutine that calls newRuntime; all
// commands stay on it.
type runtime struct {
	logger  *slog.Logger
	graph   *graph.Graph
	reg     *registry.Registry
	pool    *tasks.Pool
	journal *eventbus.Journal
	builder *scene.Builder
}

func newRuntime(command *cli.Command, module string) *runtime {
	log.Setup(command.String("log-level"))

	runID := module + "-" + uuid.New().String()[:8]
	logger := log.WithModule(module).With("runId", runID)

	g := graph.New(logger)
	anim.RegisterTypes(g)
	data.RegisterTypes(g)

	journal := eventbus.NewJournal(logger)
	g.SetJournal(journal)

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaults()

	pool := tasks.NewPool(logger, command.Int("workers"))

	return &runtime{
		logger:  logger,
		graph:   g,
		reg:     reg,
		pool:    pool,
		journal: journal,
		builder: scene.NewBuilder(logger, g, reg, pool),
	}
}

func (r *runtime) close() {
	r.pool.Close()

	if err := r.journal.Close(); err != nil {
		r.logger.Error("Failed to close journal", "error", err)
	}
}

func (r *runtime) loadScene(path string) (*scene.Scene, error) {
	desc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	sc, err := r.builder.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	return sc, nil
}

func sceneFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "scene",
		Aliases:  []string{"s"},
		Usage:    "Path to the scene description file",
		Required: true,
		Sources:  cli.EnvVars("VIZFLOW_SCENE"),
	}
}

func workersFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "workers",
		Usage:   "Worker pool size (defaults to the number of CPUs)",
		Value:   0,
		Sources: cli.EnvVars("VIZFLOW_WORKERS"),
	}
}
