package query

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/model"
	"google.golang.org/genai"
)

// SummarizeSession condenses a conversation into a short description
// suitable for listing past sessions.
func (u *UseCase) SummarizeSession(ctx context.Context, turns []model.Turn) (string, error) {
	if len(turns) == 0 {
		return "", goerr.New("conversation has no turns")
	}

	var buf bytes.Buffer
	err := summarizePrompt.Execute(&buf, map[string]string{
		"Transcript": renderHistory(turns),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render summarize prompt")
	}

	resp, err := u.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:     ptrFloat32(0.3),
			MaxOutputTokens: 200,
		},
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate session summary")
	}

	summary := adapter.ResponseText(resp)
	if summary == "" {
		summary = "Summary unavailable."
	}
	return summary, nil
}
