// Package chat runs interactive tool-calling sessions over a knowledge
// space. The model can search the space and save new notes through the
// registered tools.
package chat

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/m-mizutani/nook/pkg/tool"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptRaw))

// maxToolRounds bounds how many consecutive function-call rounds the
// model gets before the session forces a text answer.
const maxToolRounds = 5

// digestLimit caps how many item digests go into the system prompt.
const digestLimit = 20

// Session holds one conversation with a space.
type Session struct {
	repo     repository.Repository
	gemini   adapter.Gemini
	storage  adapter.Storage
	registry *tool.Registry

	space        *model.Space
	conversation *model.Conversation
	contents     []*genai.Content
}

// NewInput contains parameters for creating a chat session.
type NewInput struct {
	Repo     repository.Repository
	Gemini   adapter.Gemini
	Storage  adapter.Storage
	Registry *tool.Registry
	SpaceID  model.SpaceID

	// ConversationID resumes an existing conversation when set.
	ConversationID model.ConversationID
}

func New(ctx context.Context, input NewInput) (*Session, error) {
	space, err := input.Repo.GetSpace(ctx, input.SpaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get space", goerr.V("space", input.SpaceID))
	}

	s := &Session{
		repo:     input.Repo,
		gemini:   input.Gemini,
		storage:  input.Storage,
		registry: input.Registry,
		space:    space,
	}

	if input.ConversationID != "" {
		conv, err := s.loadConversation(ctx, input.ConversationID)
		if err != nil {
			return nil, err
		}
		s.conversation = conv
		s.contents = turnsToContents(conv.Turns)
	} else {
		now := time.Now()
		s.conversation = &model.Conversation{
			ID:        model.NewConversationID(),
			SpaceID:   space.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return s, nil
}

// Conversation returns the metadata of the current conversation.
func (s *Session) Conversation() *model.Conversation {
	return s.conversation
}

// Send delivers one user message and returns the model's final text
// answer after any tool-calling rounds.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", goerr.New("message must not be empty")
	}
	logger := logging.From(ctx)

	systemPrompt, err := s.buildSystemPrompt(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}
	if s.registry != nil {
		config.Tools = s.registry.Specs()
	}

	s.appendTurn(model.RoleUser, message)
	s.contents = append(s.contents, genai.NewContentFromText(message, genai.RoleUser))

	var finalText string
	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.gemini.GenerateContent(ctx, s.contents, config)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate chat response")
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", goerr.New("empty response from model")
		}

		candidate := resp.Candidates[0]
		s.contents = append(s.contents, candidate.Content)

		var functionResponses []*genai.Part
		var textParts []string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				textParts = append(textParts, part.Text)
			}
			if part.FunctionCall == nil {
				continue
			}

			logger.Debug("executing tool", "name", part.FunctionCall.Name)
			funcResp, err := s.registry.Execute(ctx, *part.FunctionCall)
			if err != nil {
				funcResp = &genai.FunctionResponse{
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"error": err.Error()},
				}
			}
			functionResponses = append(functionResponses, &genai.Part{FunctionResponse: funcResp})
		}

		if len(functionResponses) == 0 {
			finalText = strings.Join(textParts, "\n")
			break
		}

		s.contents = append(s.contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: functionResponses,
		})
	}

	if finalText == "" {
		finalText = "I could not complete that within the allotted steps. Could you rephrase?"
	}

	s.appendTurn(model.RoleModel, finalText)
	return finalText, nil
}

// buildSystemPrompt renders the space digest and tool guidance.
func (s *Session) buildSystemPrompt(ctx context.Context) (string, error) {
	items, err := s.repo.ListItems(ctx, s.space.ID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list items for system prompt")
	}

	shown := items
	if len(shown) > digestLimit {
		shown = shown[:digestLimit]
	}

	digests := make([]string, 0, len(shown))
	for _, item := range shown {
		digests = append(digests, fmt.Sprintf("- %q [%s] %s", item.Title, item.Type, item.Summary))
	}
	digest := strings.Join(digests, "\n")
	if digest == "" {
		digest = "(the space is empty)"
	}

	var toolPrompts string
	if s.registry != nil {
		toolPrompts = s.registry.Prompts(ctx)
	}

	var buf bytes.Buffer
	err = systemPromptTmpl.Execute(&buf, map[string]any{
		"SpaceName":   s.space.Name,
		"TotalCount":  len(items),
		"ShownCount":  len(shown),
		"Digest":      digest,
		"ToolPrompts": toolPrompts,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return buf.String(), nil
}

func (s *Session) appendTurn(role model.Role, text string) {
	s.conversation.Turns = append(s.conversation.Turns, model.Turn{
		Role:      role,
		Content:   text,
		Timestamp: time.Now(),
	})
	s.conversation.UpdatedAt = time.Now()
}

// turnsToContents rebuilds the model-visible history from stored turns.
// Tool-call intermediates are not persisted, only user and model text.
func turnsToContents(turns []model.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role == model.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}
