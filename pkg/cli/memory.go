package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/nook/pkg/memory"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/urfave/cli/v3"
)

func memoryCommand() *cli.Command {
	var (
		cfg     config
		spaceID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space",
			Aliases:     []string{"s"},
			Usage:       "Space ID to summarize",
			Sources:     cli.EnvVars("NOOK_SPACE_ID"),
			Destination: &spaceID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "memory",
		Usage: "Show the one-shot memory of a space",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			space, items, err := loadSpace(ctx, repo, model.SpaceID(spaceID))
			if err != nil {
				return err
			}

			sp := newSpinner("summarizing")
			sp.Start()
			summary, err := memory.New(gemini).Get(ctx, space, items)
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, summary)
			return nil
		},
	}
}
