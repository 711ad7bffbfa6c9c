package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/chilammps/vizflow/pkg/scene"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Check a scene description without evaluating it",
		Flags: []cli.Flag{
			sceneFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			rt := newRuntime(command, "validate")
			defer rt.close()

			path := command.String("scene")

			desc, err := scene.Load(path)
			if err != nil {
				return err
			}

			if _, err := os.Stat(desc.Source.Path); err != nil {
				return fmt.Errorf("scene %s: source file: %w", desc.Name, err)
			}

			for i, spec := range desc.Stages {
				if err := rt.reg.ValidateStage(spec.Type, spec.Config); err != nil {
					return fmt.Errorf("scene %s, stage %d: %w", desc.Name, i, err)
				}
			}

			fmt.Printf("%s: ok (%d stages)\n", path, len(desc.Stages))

			return nil
		},
	}
}
