package query

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/retrieval"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"google.golang.org/genai"
)

// CompareInput names two spaces and the question to compare them with.
type CompareInput struct {
	SpaceA   *model.Space
	ItemsA   []*model.Item
	SpaceB   *model.Space
	ItemsB   []*model.Item
	Question string
}

func (x *CompareInput) Validate() error {
	if x.SpaceA == nil || x.SpaceB == nil {
		return goerr.New("both spaces must be set")
	}
	if x.Question == "" {
		return goerr.New("question must not be empty")
	}
	return nil
}

// CompareSpaces answers a question about the relationship between two
// spaces. Memories for both spaces are generated concurrently.
func (u *UseCase) CompareSpaces(ctx context.Context, input CompareInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid compare input")
	}

	var memA, memB string
	if u.memory != nil {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			memA = u.cachedMemory(ctx, input.SpaceA, input.ItemsA)
		}()
		go func() {
			defer wg.Done()
			memB = u.cachedMemory(ctx, input.SpaceB, input.ItemsB)
		}()
		wg.Wait()
	}

	now := time.Now()
	relevantA := retrieval.Retrieve(input.Question, input.ItemsA, retrieval.DefaultTopK, now)
	relevantB := retrieval.Retrieve(input.Question, input.ItemsB, retrieval.DefaultTopK, now)

	var buf bytes.Buffer
	err := comparePrompt.Execute(&buf, map[string]string{
		"SpaceA":   input.SpaceA.Name,
		"MemoryA":  orNone(memA),
		"ContextA": retrieval.BuildContext(relevantA, true, nil),
		"SpaceB":   input.SpaceB.Name,
		"MemoryB":  orNone(memB),
		"ContextB": retrieval.BuildContext(relevantB, true, nil),
		"Question": input.Question,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render compare prompt")
	}

	resp, err := u.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:     ptrFloat32(0.8),
			MaxOutputTokens: 3000,
		},
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate comparison")
	}

	return adapter.ResponseText(resp), nil
}

func (u *UseCase) cachedMemory(ctx context.Context, space *model.Space, items []*model.Item) string {
	summary, err := u.memory.Get(ctx, space, items)
	if err != nil {
		logging.From(ctx).Warn("memory generation failed for comparison",
			"space", space.ID, "error", err)
		return ""
	}
	return summary
}

func orNone(s string) string {
	if s == "" {
		return "(no memory available)"
	}
	return s
}
