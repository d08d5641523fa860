// Package cli wires commands, configuration, and collaborators for the
// nook command line interface.
package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/nook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cli.Command{
		Name:  "nook",
		Usage: "Personal knowledge base with a retrieval-augmented assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("NOOK_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format (console, json)",
				Value:       "console",
				Sources:     cli.EnvVars("NOOK_LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.New(logLevel, logFormat, os.Stderr)
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			spacesCommand(),
			captureCommand(),
			itemsCommand(),
			askCommand(),
			chatCommand(),
			memoryCommand(),
			compareCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
