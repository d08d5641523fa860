package knowledge

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

type saveInput struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Save implements the create_knowledge_node tool
type Save struct {
	repo    repository.Repository
	spaceID model.SpaceID
}

// NewSave creates a save tool bound to a space
func NewSave(repo repository.Repository, spaceID model.SpaceID) *Save {
	return &Save{
		repo:    repo,
		spaceID: spaceID,
	}
}

func (s *Save) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "create_knowledge_node",
				Description: "Save a new note or idea to the knowledge base.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {
							Type:        genai.TypeString,
							Description: "Note title",
						},
						"summary": {
							Type:        genai.TypeString,
							Description: "Note content/summary",
						},
						"tags": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "Tags",
						},
					},
					Required: []string{"title", "summary"},
				},
			},
		},
	}
}

func (s *Save) Prompt(ctx context.Context) string {
	return "Use 'create_knowledge_node' to save new ideas the user wants to keep."
}

func (s *Save) Flags() []cli.Flag {
	return nil
}

func (s *Save) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	var input saveInput
	if err := decodeArgs(fc.Args, &input); err != nil {
		return nil, err
	}

	tags := input.Tags
	if len(tags) == 0 {
		tags = []string{"AI-Generated"}
	}

	now := time.Now()
	item := &model.Item{
		ID:        model.NewItemID(),
		SpaceID:   s.spaceID,
		Type:      model.ItemTypeNote,
		Title:     input.Title,
		Summary:   input.Summary,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.ItemStatusNew,
		Source:    model.ItemSourceChat,
	}

	if err := item.Validate(); err != nil {
		return nil, goerr.Wrap(err, "model produced an invalid note")
	}

	if err := s.repo.PutItem(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to save note")
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"result": "Successfully saved note.",
			"id":     string(item.ID),
		},
	}, nil
}
