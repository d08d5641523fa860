package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/memory"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/m-mizutani/nook/pkg/usecase/query"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg       config
		spaceID   string
		useWeb    bool
		memoryTxt string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space",
			Aliases:     []string{"s"},
			Usage:       "Space ID to ask against",
			Sources:     cli.EnvVars("NOOK_SPACE_ID"),
			Destination: &spaceID,
			Required:    true,
		},
		&cli.BoolFlag{
			Name:        "web",
			Aliases:     []string{"w"},
			Usage:       "Augment the answer with web search results",
			Destination: &useWeb,
		},
		&cli.StringFlag{
			Name:        "memory",
			Usage:       "Use this text as space memory instead of generating it",
			Destination: &memoryTxt,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a question about a space",
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

			space, items, err := loadSpace(ctx, repo, model.SpaceID(spaceID))
			if err != nil {
				return err
			}

			opts := []query.Option{
				query.WithMemory(memory.New(gemini)),
			}
			if useWeb {
				search, err := cfg.newSearch(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, query.WithSearch(search))
			}
			uc := query.New(gemini, opts...)

			input := query.Input{
				Query:        question,
				Space:        space,
				Items:        items,
				UseWebSearch: useWeb,
			}
			if memoryTxt != "" {
				input.MemoryOverride = &memoryTxt
			}

			sp := newSpinner("thinking")
			sp.Start()
			result, err := uc.Ask(ctx, input)
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, result.Answer)
			if len(result.Sources) > 0 {
				fmt.Fprintf(c.Root().Writer, "\nSources: %s\n", strings.Join(result.Sources, ", "))
			}
			return nil
		},
	}
}

// loadSpace fetches a space and its full item collection.
func loadSpace(ctx context.Context, repo repository.Repository, id model.SpaceID) (*model.Space, []*model.Item, error) {
	space, err := repo.GetSpace(ctx, id)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to get space", goerr.V("space", id))
	}

	items, err := repo.ListItems(ctx, id)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list items", goerr.V("space", id))
	}

	return space, items, nil
}

func newSpinner(label string) *spinner.Spinner {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " " + label + "..."
	return sp
}
