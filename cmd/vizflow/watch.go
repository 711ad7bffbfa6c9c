package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/chilammps/vizflow/pkg/anim"
	"github.com/chilammps/vizflow/pkg/pipeline"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Re-evaluate a scene whenever its source file changes",
		Flags: []cli.Flag{
			sceneFlag(),
			workersFlag(),
			&cli.IntFlag{
				Name:    "frame",
				Aliases: []string{"f"},
				Usage:   "Animation frame to evaluate",
				Value:   0,
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "How often to check for pending reloads",
				Value: 500 * time.Millisecond,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt := newRuntime(command, "watch")
			defer rt.close()

			sc, err := rt.loadScene(command.String("scene"))
			if err != nil {
				return err
			}
			defer sc.Close()

			if err := sc.Source.Watch(ctx); err != nil {
				return err
			}

			frame := command.Int("frame")
			t := anim.FrameToTime(frame, anim.TicksPerFrame)

			rt.logger.Info("Watching scene", "scene", sc.Name, "frame", frame)

			ticker := time.NewTicker(command.Duration("poll-interval"))
			defer ticker.Stop()

			var last *pipeline.FlowState

			for {
				rt.pool.Drain()
				sc.Source.Poll()

				state := sc.Pipeline.Evaluate(t)
				if last == nil || state != last {
					printState(frame, state)
					last = state
				}

				select {
				case <-ctx.Done():
					return nil
				case <-rt.pool.Ready():
				case <-ticker.C:
				}
			}
		},
	}
}
