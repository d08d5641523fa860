package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/usecase/capture"
	"github.com/urfave/cli/v3"
)

func captureCommand() *cli.Command {
	var (
		cfg     config
		spaceID string
		input   string
		url     string
		title   string
		summary string
		tags    string
		pinned  bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space",
			Aliases:     []string{"s"},
			Usage:       "Space ID to capture into",
			Sources:     cli.EnvVars("NOOK_SPACE_ID"),
			Destination: &spaceID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a file with the content (reads stdin when \"-\")",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "url",
			Usage:       "Source URL of the content",
			Destination: &url,
		},
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Explicit title (skips LLM analysis when summary is also set)",
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "summary",
			Usage:       "Explicit summary",
			Destination: &summary,
		},
		&cli.StringFlag{
			Name:        "tags",
			Usage:       "Comma-separated tags",
			Destination: &tags,
		},
		&cli.BoolFlag{
			Name:        "pinned",
			Usage:       "Pin the item so it always appears in space memory",
			Destination: &pinned,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, policyFlags(&cfg)...)

	return &cli.Command{
		Name:      "capture",
		Usage:     "Save content into a space",
		ArgsUsage: "[content]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			content := c.Args().First()
			if input != "" {
				data, err := readInput(input)
				if err != nil {
					return err
				}
				content = data
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}
			engine, err := cfg.newPolicy(ctx)
			if err != nil {
				return err
			}

			uc := capture.New(gemini, repo, capture.WithPolicy(engine))

			item, err := uc.Insert(ctx, capture.Input{
				SpaceID: model.SpaceID(spaceID),
				Content: content,
				URL:     url,
				Title:   title,
				Summary: summary,
				Tags:    splitTags(tags),
				Source:  model.ItemSourceWeb,
				Pinned:  pinned,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Captured %q (%s)\n", item.Title, item.ID)
			if len(item.Tags) > 0 {
				fmt.Fprintf(c.Root().Writer, "Tags: %s\n", strings.Join(item.Tags, ", "))
			}
			return nil
		},
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return string(data), nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
