package retrieval_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/retrieval"
)

func TestBuildContextEmpty(t *testing.T) {
	out := retrieval.BuildContext(nil, false, nil)
	gt.Equal(t, out, retrieval.NoKnowledgeSentinel)

	out = retrieval.BuildContext([]*model.Item{}, true, nil)
	gt.Equal(t, out, retrieval.NoKnowledgeSentinel)
}

func TestBuildContextTwoItemsSummaryOnly(t *testing.T) {
	items := []*model.Item{
		newItem("Attention is All You Need", "Foundational Transformers paper", "AI"),
		newItem("Startup Ideas 2024", "SaaS concepts", "Business"),
	}
	items[0].Content = "The dominant sequence transduction models..."
	items[1].Content = "B2B marketplaces are underserved..."

	out := retrieval.BuildContext(items, false, nil)

	gt.S(t, out).Contains(`[1] "Attention is All You Need"`)
	gt.S(t, out).Contains(`[2] "Startup Ideas 2024"`)
	gt.S(t, out).Contains("\n\n---\n\n")
	gt.S(t, out).NotContains("Content:")
	gt.S(t, out).NotContains("WEB SEARCH RESULTS")
}

func TestBuildContextWithContent(t *testing.T) {
	item := newItem("Long read", "summary here")
	item.Content = strings.Repeat("a", 800)

	out := retrieval.BuildContext([]*model.Item{item}, true, nil)
	gt.S(t, out).Contains("Content: " + strings.Repeat("a", 500))
	gt.S(t, out).NotContains(strings.Repeat("a", 501))
}

func TestBuildContextPlaceholders(t *testing.T) {
	item := newItem("Bare item", "")
	item.Tags = nil

	out := retrieval.BuildContext([]*model.Item{item}, true, nil)
	gt.S(t, out).Contains("Summary: No summary")
	gt.S(t, out).Contains("Tags: none")
	gt.S(t, out).NotContains("Source:")
}

func TestBuildContextURLLine(t *testing.T) {
	item := newItem("Paper", "abstract")
	item.URL = "https://arxiv.org/abs/1706.03762"

	out := retrieval.BuildContext([]*model.Item{item}, false, nil)
	gt.S(t, out).Contains("Source: https://arxiv.org/abs/1706.03762")
}

func TestBuildContextWebResults(t *testing.T) {
	items := []*model.Item{newItem("Note", "text")}
	web := []string{"result one", "result two"}

	out := retrieval.BuildContext(items, false, web)
	gt.S(t, out).Contains("WEB SEARCH RESULTS:\nresult one\nresult two")

	// Web section is appended even when local retrieval found nothing
	out = retrieval.BuildContext(nil, false, web)
	gt.S(t, out).Contains(retrieval.NoKnowledgeSentinel)
	gt.S(t, out).Contains("WEB SEARCH RESULTS:")
}
