// Package capture brings new content into the knowledge base: it asks
// the LLM to analyze raw content into a structured item, runs the item
// through the ingest and enrich policies, and persists it.
package capture

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/policy"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/m-mizutani/nook/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/analyze.md
var analyzePromptRaw string

var analyzePrompt = template.Must(template.New("analyze").Parse(analyzePromptRaw))

// ErrRejected is returned when the ingest policy denies an item.
var ErrRejected = goerr.New("item rejected by ingest policy")

type UseCase struct {
	gemini adapter.Gemini
	repo   repository.Repository
	policy *policy.Engine
}

type Option func(*UseCase)

// WithPolicy attaches a policy engine to the capture pipeline.
func WithPolicy(p *policy.Engine) Option {
	return func(u *UseCase) {
		u.policy = p
	}
}

func New(gemini adapter.Gemini, repo repository.Repository, opts ...Option) *UseCase {
	u := &UseCase{
		gemini: gemini,
		repo:   repo,
		policy: &policy.Engine{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Analysis is the structured interpretation of raw captured content.
type Analysis struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Type    string   `json:"type"`
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString},
		"summary": {Type: genai.TypeString},
		"tags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"type": {
			Type: genai.TypeString,
			Enum: []string{"article", "video", "note", "image", "tweet", "chat_log", "link"},
		},
	},
	Required: []string{"title", "summary", "tags", "type"},
}

// Analyze asks the LLM for a structured interpretation of the content.
// Analysis failures degrade to a heuristic result rather than an error
// so capture never loses content.
func (u *UseCase) Analyze(ctx context.Context, content, url string) *Analysis {
	logger := logging.From(ctx)

	var buf bytes.Buffer
	if err := analyzePrompt.Execute(&buf, map[string]string{
		"Content": content,
		"URL":     url,
	}); err != nil {
		logger.Warn("failed to render analyze prompt, falling back", "error", err)
		return fallbackAnalysis(content, url)
	}

	resp, err := u.gemini.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(buf.String(), genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	)
	if err != nil {
		logger.Warn("content analysis failed, falling back", "error", err)
		return fallbackAnalysis(content, url)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(adapter.ResponseText(resp)), &analysis); err != nil {
		logger.Warn("failed to parse analysis response, falling back", "error", err)
		return fallbackAnalysis(content, url)
	}
	if analysis.Title == "" {
		return fallbackAnalysis(content, url)
	}
	return &analysis
}

// fallbackAnalysis derives a minimal item shape without the LLM.
func fallbackAnalysis(content, url string) *Analysis {
	title := strings.TrimSpace(content)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > 80 {
		title = title[:80]
	}
	if title == "" {
		title = "Untitled capture"
	}

	summary := strings.TrimSpace(content)
	if len(summary) > 200 {
		summary = summary[:200]
	}

	itemType := "note"
	if url != "" {
		itemType = "link"
	}

	return &Analysis{
		Title:   title,
		Summary: summary,
		Type:    itemType,
	}
}

// Input describes content to insert into a space. Title and Summary are
// optional; when absent they come from LLM analysis of Content.
type Input struct {
	SpaceID model.SpaceID
	Content string
	URL     string
	Title   string
	Summary string
	Tags    []string
	Type    model.ItemType
	Source  model.ItemSource
	Pinned  bool
}

// Insert runs the full capture pipeline and returns the stored item.
func (u *UseCase) Insert(ctx context.Context, input Input) (*model.Item, error) {
	if input.SpaceID == "" {
		return nil, goerr.New("space ID must not be empty")
	}
	if input.Content == "" && input.Title == "" {
		return nil, goerr.New("either content or title must be provided")
	}

	if _, err := u.repo.GetSpace(ctx, input.SpaceID); err != nil {
		return nil, goerr.Wrap(err, "failed to resolve space", goerr.V("space", input.SpaceID))
	}

	now := time.Now()
	item := &model.Item{
		ID:        model.NewItemID(),
		SpaceID:   input.SpaceID,
		Type:      input.Type,
		Title:     input.Title,
		Summary:   input.Summary,
		Content:   input.Content,
		URL:       input.URL,
		Tags:      input.Tags,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.ItemStatusNew,
		Pinned:    input.Pinned,
		Source:    input.Source,
	}
	if item.Source == "" {
		item.Source = model.ItemSourceWeb
	}

	if item.Title == "" || item.Summary == "" {
		analysis := u.Analyze(ctx, input.Content, input.URL)
		if item.Title == "" {
			item.Title = analysis.Title
		}
		if item.Summary == "" {
			item.Summary = analysis.Summary
		}
		if len(item.Tags) == 0 {
			item.Tags = analysis.Tags
		}
		if item.Type == "" {
			item.Type = model.ItemType(analysis.Type)
		}
	}
	if item.Type == "" {
		item.Type = model.ItemTypeNote
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	decision, err := u.policy.Ingest(ctx, item)
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, goerr.Wrap(ErrRejected, decision.Reason, goerr.V("title", item.Title))
	}

	extraTags, err := u.policy.Enrich(ctx, item)
	if err != nil {
		return nil, err
	}
	item.Tags = mergeTags(item.Tags, extraTags)

	if err := u.repo.PutItem(ctx, item); err != nil {
		return nil, goerr.Wrap(err, "failed to store item", goerr.V("item", item.ID))
	}

	logging.From(ctx).Info("captured item",
		"id", item.ID, "space", item.SpaceID, "title", item.Title)

	return item, nil
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	merged := make([]string, 0, len(base)+len(extra))
	for _, t := range base {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range extra {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
