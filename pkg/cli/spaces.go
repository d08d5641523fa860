package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/urfave/cli/v3"
)

func spacesCommand() *cli.Command {
	return &cli.Command{
		Name:  "spaces",
		Usage: "Manage knowledge spaces",
		Commands: []*cli.Command{
			spacesListCommand(),
			spacesCreateCommand(),
		},
	}
}

func spacesListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List all spaces",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			spaces, err := repo.ListSpaces(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list spaces")
			}

			if len(spaces) == 0 {
				fmt.Fprintln(c.Root().Writer, "No spaces found")
				return nil
			}

			for _, space := range spaces {
				fmt.Fprintf(c.Root().Writer, "%s  %s  (created %s)\n",
					space.ID, space.Name, space.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func spacesCreateCommand() *cli.Command {
	var cfg config

	var description string
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "description",
			Usage:       "Short description of the space",
			Destination: &description,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new space",
		ArgsUsage: "<name>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("space name is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			space := &model.Space{
				ID:          model.NewSpaceID(),
				Name:        name,
				Description: description,
				CreatedAt:   time.Now(),
			}
			if err := repo.PutSpace(ctx, space); err != nil {
				return goerr.Wrap(err, "failed to create space")
			}

			fmt.Fprintf(c.Root().Writer, "Created space %s (%s)\n", space.Name, space.ID)
			return nil
		},
	}
}
