// Package knowledge provides the built-in tools operating on the active
// space: searching saved items and saving new notes from a chat session.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/m-mizutani/nook/pkg/retrieval"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

type searchInput struct {
	Query string `json:"query"`
}

// Search implements the search_knowledge_base tool
type Search struct {
	repo    repository.Repository
	spaceID model.SpaceID
}

// NewSearch creates a search tool bound to a space
func NewSearch(repo repository.Repository, spaceID model.SpaceID) *Search {
	return &Search{
		repo:    repo,
		spaceID: spaceID,
	}
}

func (s *Search) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_knowledge_base",
				Description: "Search existing notes and knowledge for information.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Search term or topic",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

func (s *Search) Prompt(ctx context.Context) string {
	return "Use 'search_knowledge_base' to look up saved items before answering from general knowledge."
}

func (s *Search) Flags() []cli.Flag {
	return nil
}

func (s *Search) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	var input searchInput
	if err := decodeArgs(fc.Args, &input); err != nil {
		return nil, err
	}
	if input.Query == "" {
		return nil, goerr.New("query is required")
	}

	items, err := s.repo.ListItems(ctx, s.spaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list items", goerr.V("space", s.spaceID))
	}

	found := retrieval.Retrieve(input.Query, items, retrieval.DefaultTopK, time.Now())

	response := map[string]any{}
	if len(found) == 0 {
		response["result"] = "No matching notes found."
	} else {
		response["result"] = fmt.Sprintf("Found %d notes", len(found))
		response["notes"] = formatNotes(found)
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: response,
	}, nil
}

func formatNotes(items []*model.Item) []map[string]string {
	notes := make([]map[string]string, len(items))
	for i, item := range items {
		notes[i] = map[string]string{
			"title":   item.Title,
			"summary": item.Summary,
			"tags":    strings.Join(item.Tags, ", "),
		}
	}
	return notes
}

// decodeArgs converts the loosely-typed function call arguments into a
// typed input struct
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal function call args")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return goerr.Wrap(err, "failed to parse function call args")
	}
	return nil
}
