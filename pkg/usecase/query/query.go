// Package query answers natural-language questions over a space by
// retrieving relevant items, assembling a grounded context, and asking
// the LLM for a final answer.
package query

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/memory"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/retrieval"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/answer.md
var answerPromptRaw string

//go:embed prompt/compare.md
var comparePromptRaw string

//go:embed prompt/summarize.md
var summarizePromptRaw string

var (
	answerPrompt    = template.Must(template.New("answer").Parse(answerPromptRaw))
	comparePrompt   = template.Must(template.New("compare").Parse(comparePromptRaw))
	summarizePrompt = template.Must(template.New("summarize").Parse(summarizePromptRaw))
)

// UseCase orchestrates retrieval-augmented answering.
type UseCase struct {
	gemini adapter.Gemini
	search adapter.Search
	memory *memory.Service
}

type Option func(*UseCase)

// WithSearch enables web search grounding. Without it, requests that
// ask for web search fall back to knowledge-base-only answering.
func WithSearch(s adapter.Search) Option {
	return func(u *UseCase) {
		u.search = s
	}
}

// WithMemory enables one-shot space memory in the answer prompt.
func WithMemory(m *memory.Service) Option {
	return func(u *UseCase) {
		u.memory = m
	}
}

func New(gemini adapter.Gemini, opts ...Option) *UseCase {
	u := &UseCase{gemini: gemini}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Input is a single question against one space. Items is the full item
// collection of the space; the use case selects what to ground on.
type Input struct {
	Query        string
	Space        *model.Space
	Items        []*model.Item
	History      []model.Turn
	UseWebSearch bool

	// MemoryOverride, when non-nil, is used verbatim as the space
	// memory and no regeneration happens. An empty string disables
	// the memory section entirely.
	MemoryOverride *string
}

// Result carries the answer and the grounding that produced it.
type Result struct {
	Answer        string
	Sources       []string
	MatchedTitles []string
}

func (x *Input) Validate() error {
	if strings.TrimSpace(x.Query) == "" {
		return goerr.New("query must not be empty")
	}
	if x.Space == nil {
		return goerr.New("space must not be nil")
	}
	return nil
}

// Ask runs the full pipeline: title matching, scoring, optional web
// search, space memory, context assembly, and answer generation.
func (u *UseCase) Ask(ctx context.Context, input Input) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid query input")
	}
	logger := logging.From(ctx)

	matched := retrieval.TitleMatches(input.Query, input.Items)
	specific := len(matched) > 0

	topK := retrieval.DefaultTopK
	if specific {
		topK = retrieval.SpecificItemTopK
	}
	relevant := retrieval.Retrieve(input.Query, input.Items, topK, time.Now())

	var webResults []string
	if input.UseWebSearch && u.search != nil {
		results, err := u.search.Search(ctx, input.Query)
		if err != nil {
			logger.Warn("web search failed, answering from knowledge base only", "error", err)
		} else {
			webResults = results
		}
	}

	mem := u.spaceMemory(ctx, input)

	knowledgeContext := retrieval.BuildContext(relevant, specific, webResults)

	matchedTitles := make([]string, 0, len(matched))
	for _, item := range matched {
		matchedTitles = append(matchedTitles, item.Title)
	}

	prompt, err := renderAnswerPrompt(answerPromptArgs{
		SpaceName:     input.Space.Name,
		Memory:        mem,
		TotalCount:    len(input.Items),
		Context:       knowledgeContext,
		MatchedTitles: strings.Join(quoteAll(matchedTitles), ", "),
		History:       renderHistory(input.History),
		Query:         input.Query,
	})
	if err != nil {
		return nil, err
	}

	resp, err := u.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:     ptrFloat32(0.7),
			MaxOutputTokens: 2048,
		},
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer",
			goerr.V("space", input.Space.ID),
		)
	}

	sources := make([]string, 0, len(relevant))
	for _, item := range relevant {
		title := item.Title
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}
		sources = append(sources, title)
	}

	return &Result{
		Answer:        adapter.ResponseText(resp),
		Sources:       sources,
		MatchedTitles: matchedTitles,
	}, nil
}

// spaceMemory resolves the memory section of the prompt. Memory is
// best-effort: a generation failure degrades to no memory rather than
// failing the whole question.
func (u *UseCase) spaceMemory(ctx context.Context, input Input) string {
	if input.MemoryOverride != nil {
		return *input.MemoryOverride
	}
	if u.memory == nil {
		return ""
	}

	summary, err := u.memory.Get(ctx, input.Space, input.Items)
	if err != nil {
		logging.From(ctx).Warn("space memory generation failed, continuing without it",
			"space", input.Space.ID, "error", err)
		return ""
	}
	return summary
}

type answerPromptArgs struct {
	SpaceName     string
	Memory        string
	TotalCount    int
	Context       string
	MatchedTitles string
	History       string
	Query         string
}

func renderAnswerPrompt(args answerPromptArgs) (string, error) {
	var buf bytes.Buffer
	if err := answerPrompt.Execute(&buf, args); err != nil {
		return "", goerr.Wrap(err, "failed to render answer prompt")
	}
	return buf.String(), nil
}

func renderHistory(turns []model.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			lines = append(lines, "User: "+turn.Content)
		case model.RoleModel:
			lines = append(lines, "AI: "+turn.Content)
		}
	}
	return strings.Join(lines, "\n\n")
}

func ptrFloat32(f float32) *float32 {
	return &f
}

func quoteAll(titles []string) []string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = `"` + t + `"`
	}
	return quoted
}
