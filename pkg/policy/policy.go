// Package policy evaluates Rego policies against items entering the
// knowledge base. Two rule sets are recognized: data.ingest decides
// whether an item is accepted, and data.enrich contributes extra tags.
package policy

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine holds prepared queries for the capture pipeline. A zero-value
// Engine (no policies loaded) accepts everything and adds nothing.
type Engine struct {
	ingest *rego.PreparedEvalQuery
	enrich *rego.PreparedEvalQuery
}

// Decision is the outcome of the ingest policy for one item.
type Decision struct {
	Allow  bool
	Reason string
}

// Ingest evaluates data.ingest against the item. Policies deny by
// setting deny to true; absence of a policy or of a verdict allows.
func (e *Engine) Ingest(ctx context.Context, item *model.Item) (*Decision, error) {
	if e.ingest == nil {
		return &Decision{Allow: true}, nil
	}

	rs, err := e.ingest.Eval(ctx, rego.EvalInput(itemInput(item)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate ingest policy", goerr.V("item", item.ID))
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &Decision{Allow: true}, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &Decision{Allow: true}, nil
	}

	if deny, ok := data["deny"].(bool); ok && deny {
		return &Decision{
			Allow:  false,
			Reason: getString(data, "reason"),
		}, nil
	}

	return &Decision{Allow: true}, nil
}

// Enrich evaluates data.enrich and returns extra tags to attach.
func (e *Engine) Enrich(ctx context.Context, item *model.Item) ([]string, error) {
	if e.enrich == nil {
		return nil, nil
	}

	rs, err := e.enrich.Eval(ctx, rego.EvalInput(itemInput(item)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate enrich policy", goerr.V("item", item.ID))
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, nil
	}

	tagData, ok := data["tags"].([]any)
	if !ok {
		return nil, nil
	}

	tags := make([]string, 0, len(tagData))
	for _, t := range tagData {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags, nil
}

func itemInput(item *model.Item) map[string]any {
	return map[string]any{
		"id":      string(item.ID),
		"space":   string(item.SpaceID),
		"type":    string(item.Type),
		"title":   item.Title,
		"summary": item.Summary,
		"content": item.Content,
		"url":     item.URL,
		"tags":    item.Tags,
		"source":  string(item.Source),
	}
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
