package adapter

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Search is the optional web search collaborator. Callers must treat a
// failure as "no results": the orchestrator degrades to local knowledge
// only and never fails a query because search was unavailable.
type Search interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// googleSearch answers queries through Gemini with the GoogleSearch
// grounding tool and reports the grounding sources as result lines.
type googleSearch struct {
	client *genai.Client
	model  string
}

// NewGoogleSearch creates a web search collaborator backed by Gemini
// grounding
func NewGoogleSearch(ctx context.Context, projectID, location string) (Search, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client for search")
	}

	return &googleSearch{
		client: client,
		model:  "gemini-2.5-flash",
	}, nil
}

func (s *googleSearch) Search(ctx context.Context, query string) ([]string, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(query), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run grounded search", goerr.V("query", query))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var results []string
	candidate := resp.Candidates[0]

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			results = append(results, fmt.Sprintf("%s (%s)", chunk.Web.Title, chunk.Web.URI))
		}
	}

	// Grounded answer text is still useful when no source chunks came back
	if len(results) == 0 {
		if text := ResponseText(resp); text != "" {
			results = append(results, text)
		}
	}

	return results, nil
}
