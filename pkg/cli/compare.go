package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/memory"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/usecase/query"
	"github.com/urfave/cli/v3"
)

func compareCommand() *cli.Command {
	var (
		cfg      config
		spaceIDA string
		spaceIDB string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space-a",
			Usage:       "First space ID",
			Destination: &spaceIDA,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "space-b",
			Usage:       "Second space ID",
			Destination: &spaceIDB,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two spaces with respect to a question",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")
			if question == "" {
				return goerr.New("question is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			spaceA, itemsA, err := loadSpace(ctx, repo, model.SpaceID(spaceIDA))
			if err != nil {
				return err
			}
			spaceB, itemsB, err := loadSpace(ctx, repo, model.SpaceID(spaceIDB))
			if err != nil {
				return err
			}

			uc := query.New(gemini, query.WithMemory(memory.New(gemini)))

			sp := newSpinner("comparing")
			sp.Start()
			answer, err := uc.CompareSpaces(ctx, query.CompareInput{
				SpaceA:   spaceA,
				ItemsA:   itemsA,
				SpaceB:   spaceB,
				ItemsB:   itemsB,
				Question: question,
			})
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, answer)
			return nil
		},
	}
}
