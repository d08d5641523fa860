package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/memory"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/service/mcp"
	"github.com/m-mizutani/nook/pkg/tool"
	"github.com/m-mizutani/nook/pkg/tool/knowledge"
	"github.com/m-mizutani/nook/pkg/usecase/chat"
	"github.com/m-mizutani/nook/pkg/usecase/query"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            config
		spaceID        string
		conversationID string
		ragMode        bool
		listMode       bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "space",
			Aliases:     []string{"s"},
			Usage:       "Space ID to chat with",
			Sources:     cli.EnvVars("NOOK_SPACE_ID"),
			Destination: &spaceID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "conversation",
			Aliases:     []string{"c"},
			Usage:       "Conversation ID to resume",
			Destination: &conversationID,
		},
		&cli.BoolFlag{
			Name:        "rag",
			Usage:       "Answer each message through retrieval instead of the tool-calling session",
			Destination: &ragMode,
		},
		&cli.BoolFlag{
			Name:        "list",
			Usage:       "List saved conversations of the space and exit",
			Destination: &listMode,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)
	flags = append(flags, mcpFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with a space",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if listMode {
				return listConversations(ctx, c, &cfg, model.SpaceID(spaceID))
			}
			if ragMode {
				return runRagChat(ctx, c, &cfg, model.SpaceID(spaceID))
			}
			return runToolChat(ctx, c, &cfg, model.SpaceID(spaceID), model.ConversationID(conversationID))
		},
	}
}

// listConversations prints saved conversations so the user can pick one
// to resume with --conversation.
func listConversations(ctx context.Context, c *cli.Command, cfg *config, spaceID model.SpaceID) error {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return err
	}

	convs, err := repo.ListConversations(ctx, spaceID)
	if err != nil {
		return goerr.Wrap(err, "failed to list conversations")
	}

	if len(convs) == 0 {
		fmt.Fprintln(c.Root().Writer, "No conversations found")
		return nil
	}

	for _, conv := range convs {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(c.Root().Writer, "%s  %s  %s\n",
			conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}

// runToolChat drives a persisted tool-calling session.
func runToolChat(ctx context.Context, c *cli.Command, cfg *config, spaceID model.SpaceID, conversationID model.ConversationID) error {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return err
	}
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return err
	}
	storage, err := cfg.newStorage(ctx)
	if err != nil {
		return err
	}

	tools := []tool.Tool{
		knowledge.NewSearch(repo, spaceID),
		knowledge.NewSave(repo, spaceID),
	}
	if mcpTool, err := mcp.LoadAndConnect(ctx, cfg.mcpConfig); err != nil {
		logging.From(ctx).Warn("failed to load MCP configuration", "error", err)
	} else if mcpTool != nil {
		tools = append(tools, mcpTool)
	}

	session, err := chat.New(ctx, chat.NewInput{
		Repo:           repo,
		Gemini:         gemini,
		Storage:        storage,
		Registry:       tool.New(tools...),
		SpaceID:        spaceID,
		ConversationID: conversationID,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create chat session")
	}

	err = chatLoop(c, func(message string) (string, error) {
		sp := newSpinner("thinking")
		sp.Start()
		defer sp.Stop()
		return session.Send(ctx, message)
	})
	if err != nil {
		return err
	}

	if len(session.Conversation().Turns) == 0 {
		return nil
	}

	// Summarize the session for the conversation listing, then persist
	if session.Conversation().Title == "" {
		uc := query.New(gemini)
		title, err := uc.SummarizeSession(ctx, session.Conversation().Turns)
		if err != nil {
			logging.From(ctx).Warn("failed to summarize session", "error", err)
		} else {
			session.Conversation().Title = title
		}
	}
	if err := session.Save(ctx); err != nil {
		return goerr.Wrap(err, "failed to save conversation")
	}

	fmt.Fprintf(c.Root().Writer, "Conversation saved: %s\n", session.Conversation().ID)
	return nil
}

// runRagChat answers each message through the retrieval pipeline, with
// the running transcript as conversational context. Nothing persists.
func runRagChat(ctx context.Context, c *cli.Command, cfg *config, spaceID model.SpaceID) error {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return err
	}
	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return err
	}

	space, items, err := loadSpace(ctx, repo, spaceID)
	if err != nil {
		return err
	}

	uc := query.New(gemini, query.WithMemory(memory.New(gemini)))

	var turns []model.Turn
	return chatLoop(c, func(message string) (string, error) {
		sp := newSpinner("retrieving")
		sp.Start()
		result, err := uc.Ask(ctx, query.Input{
			Query:   message,
			Space:   space,
			Items:   items,
			History: turns,
		})
		sp.Stop()
		if err != nil {
			return "", err
		}

		turns = append(turns,
			model.Turn{Role: model.RoleUser, Content: message},
			model.Turn{Role: model.RoleModel, Content: result.Answer},
		)

		answer := result.Answer
		if len(result.Sources) > 0 {
			answer += "\n(sources: " + strings.Join(result.Sources, ", ") + ")"
		}
		return answer, nil
	})
}

// chatLoop reads lines until EOF or "exit" and feeds them to send.
func chatLoop(c *cli.Command, send func(message string) (string, error)) error {
	rl, err := readline.New("> ")
	if err != nil {
		return goerr.Wrap(err, "failed to initialize readline")
	}
	defer rl.Close()

	fmt.Fprintln(c.Root().Writer, "Chat session started. Type 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				break
			}
			return goerr.Wrap(err, "failed to read input")
		}

		message := strings.TrimSpace(line)
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		answer, err := send(message)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "%s\n\n", answer)
	}

	return nil
}
