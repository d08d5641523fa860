package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/urfave/cli/v3"
)

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Inspect items in a space",
		Commands: []*cli.Command{
			itemsListCommand(),
		},
	}
}

func itemsListCommand() *cli.Command {
	var (
		cfg     config
		spaceID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space",
			Aliases:     []string{"s"},
			Usage:       "Space ID",
			Sources:     cli.EnvVars("NOOK_SPACE_ID"),
			Destination: &spaceID,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List items of a space, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			items, err := repo.ListItems(ctx, model.SpaceID(spaceID))
			if err != nil {
				return goerr.Wrap(err, "failed to list items")
			}

			if len(items) == 0 {
				fmt.Fprintln(c.Root().Writer, "No items found")
				return nil
			}

			for _, item := range items {
				marker := " "
				if item.Pinned {
					marker = "*"
				}
				line := fmt.Sprintf("%s %s  [%s] %s", marker, item.ID, item.Type, item.Title)
				if len(item.Tags) > 0 {
					line += "  (" + strings.Join(item.Tags, ", ") + ")"
				}
				fmt.Fprintln(c.Root().Writer, line)
			}
			return nil
		},
	}
}
