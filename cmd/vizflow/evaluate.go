package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/data"
	"github.com/chilammps/vizflow/pkg/pipeline"
	"github.com/chilammps/vizflow/pkg/scene"
)

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Evaluate a scene's pipeline at one animation frame",
		Flags: []cli.Flag{
			sceneFlag(),
			workersFlag(),
			&cli.IntFlag{
				Name:    "frame",
				Aliases: []string{"f"},
				Usage:   "Animation frame to evaluate",
				Value:   0,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			rt := newRuntime(command, "evaluate")
			defer rt.close()

			sc, err := rt.loadScene(command.String("scene"))
			if err != nil {
				return err
			}
			defer sc.Close()

			frame := command.Int("frame")
			t := anim.FrameToTime(frame, anim.TicksPerFrame)

			state, err := evaluateSettled(ctx, rt, sc, t)
			if err != nil {
				return err
			}

			printState(frame, state)

			if state.Status().Kind == pipeline.StatusError {
				return fmt.Errorf("evaluation failed: %s", state.Status().Message)
			}

			return nil
		},
	}
}

// evaluateSettled evaluates until the result is no longer pending, draining
// the worker pool between attempts.
func evaluateSettled(ctx context.Context, rt *runtime, sc *scene.Scene, t anim.Time) (*pipeline.FlowState, error) {
	for {
		state := sc.Pipeline.Evaluate(t)
		if state.Status().Kind != pipeline.StatusPending {
			return state, nil
		}

		rt.logger.Debug("Result pending, waiting for workers", "status", state.Status().Message)

		if _, err := rt.pool.DrainWait(ctx); err != nil {
			return nil, err
		}
	}
}

func printState(frame int, state *pipeline.FlowState) {
	fmt.Printf("frame %d: status=%s validity=%s\n", frame, state.Status(), state.Validity())

	for _, obj := range state.Objects() {
		fmt.Printf("  %s (revision %d)", obj.Kind(), obj.Revision())

		if points, ok := obj.(*data.PointSet); ok {
			fmt.Printf(" points=%d colors=%d", points.Len(), len(points.Colors()))
		}

		fmt.Println()
	}
}
