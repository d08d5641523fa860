// Package memory maintains the one-shot memory of a space: a short
// natural-language digest of its content, cached behind a bounded LRU with
// a freshness window.
package memory

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/adapter"
	"github.com/m-mizutani/nook/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/memory.md
var memoryPromptRaw string

var memoryPromptTmpl = template.Must(template.New("memory").Parse(memoryPromptRaw))

const (
	// FreshnessWindow is how long a cached memory is served without
	// regeneration
	FreshnessWindow = 5 * time.Minute

	// maxCacheEntries bounds the cache across all spaces
	maxCacheEntries = 128

	// maxSampledTitles caps the titles recorded alongside a memory
	maxSampledTitles = 10
)

// Service generates and caches space memories. Concurrent requests for the
// same key may both regenerate on a cold cache; last write wins, which is
// harmless duplicate work.
type Service struct {
	gemini adapter.Gemini
	cache  *expirable.LRU[string, *model.SpaceMemory]
}

type Option func(*options)

type options struct {
	ttl  time.Duration
	size int
}

// WithFreshnessWindow overrides the cache freshness window
func WithFreshnessWindow(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

// WithCacheSize overrides the cache entry bound
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

// New creates a memory service backed by the given generation collaborator
func New(gemini adapter.Gemini, opts ...Option) *Service {
	o := &options{
		ttl:  FreshnessWindow,
		size: maxCacheEntries,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Service{
		gemini: gemini,
		cache:  expirable.NewLRU[string, *model.SpaceMemory](o.size, nil, o.ttl),
	}
}

// Get returns the memory summary for a space, regenerating it when the
// cached entry is missing or stale. An empty collection yields an empty
// summary without touching the collaborator. Generation failures are
// returned to the caller and never cached, so the next request retries.
func (x *Service) Get(ctx context.Context, space *model.Space, items []*model.Item) (string, error) {
	if space == nil {
		return "", goerr.New("space is required")
	}
	if len(items) == 0 {
		return "", nil
	}

	key := string(space.ID) + ":" + Fingerprint(items)
	if cached, ok := x.cache.Get(key); ok {
		return cached.Summary, nil
	}

	sampled := Sample(items)

	prompt, err := renderPrompt(space.Name, len(items), sampled)
	if err != nil {
		return "", err
	}

	temp := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 500,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := x.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate space memory", goerr.V("space", space.Name))
	}

	summary := adapter.ResponseText(resp)

	titles := make([]string, 0, maxSampledTitles)
	for _, item := range sampled {
		if len(titles) >= maxSampledTitles {
			break
		}
		titles = append(titles, item.Title)
	}

	x.cache.Add(key, &model.SpaceMemory{
		SpaceID:       space.ID,
		Summary:       summary,
		SampledTitles: titles,
		ItemCount:     len(items),
		Fingerprint:   Fingerprint(items),
		GeneratedAt:   time.Now(),
	})

	return summary, nil
}

func renderPrompt(spaceName string, totalCount int, sampled []*model.Item) (string, error) {
	var digest bytes.Buffer
	for _, item := range sampled {
		desc := item.Summary
		if desc == "" && item.Content != "" {
			desc = excerpt(item.Content, 100)
		}
		if desc == "" {
			desc = "No description"
		}
		digest.WriteString("- \"" + item.Title + "\": " + desc + "\n")
	}

	var buf bytes.Buffer
	err := memoryPromptTmpl.Execute(&buf, map[string]any{
		"SpaceName":      spaceName,
		"TotalCount":     totalCount,
		"SampledCount":   len(sampled),
		"ContentSummary": digest.String(),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render memory prompt")
	}
	return buf.String(), nil
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
