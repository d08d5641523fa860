package retrieval_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/retrieval"
)

func TestRetrieveTopKBound(t *testing.T) {
	now := time.Now()
	var items []*model.Item
	for i := range 7 {
		items = append(items, newItem(fmt.Sprintf("note %d", i), ""))
	}

	testCases := []struct {
		topK     int
		expected int
	}{
		{0, 0},
		{1, 1},
		{5, 5},
		{7, 7},
		{100, 7},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("topK=%d", tc.topK), func(t *testing.T) {
			result := retrieval.Retrieve("note", items, tc.topK, now)
			gt.A(t, result).Length(tc.expected)
		})
	}
}

func TestRetrieveEmptyCollection(t *testing.T) {
	result := retrieval.Retrieve("anything", nil, 5, time.Now())
	gt.A(t, result).Length(0)
}

func TestRetrieveStability(t *testing.T) {
	// Equal-scoring items keep their original collection order
	now := time.Now()
	base := now.Add(-90 * 24 * time.Hour)
	var items []*model.Item
	for i := range 5 {
		item := newItem("unrelated entry", "")
		item.CreatedAt = base
		item.Summary = fmt.Sprintf("marker-%d", i)
		items = append(items, item)
	}

	result := retrieval.Retrieve("quantum computing", items, 5, now)
	gt.A(t, result).Length(5)
	for i, item := range result {
		gt.Equal(t, item.Summary, fmt.Sprintf("marker-%d", i))
	}
}

func TestRetrieveDeterminism(t *testing.T) {
	now := time.Now()
	items := []*model.Item{
		newItem("Attention is All You Need", "Foundational Transformers paper", "AI", "Transformers"),
		newItem("Startup Ideas 2024", "SaaS concepts", "Business"),
		newItem("Transformer architectures survey", "Overview of attention models", "AI"),
	}

	first := retrieval.Retrieve("transformers", items, 3, now)
	for range 5 {
		again := retrieval.Retrieve("transformers", items, 3, now)
		gt.A(t, again).Length(len(first))
		for i := range first {
			gt.Equal(t, again[i].ID, first[i].ID)
		}
	}
}

func TestRetrieveExactTitleQueryRanksFirst(t *testing.T) {
	now := time.Now()
	items := []*model.Item{
		newItem("Startup Ideas 2024", "SaaS concepts", "Business"),
		newItem("Attention is All You Need", "Foundational Transformers paper", "AI"),
		newItem("Grocery list", ""),
	}

	result := retrieval.Retrieve("attention is all you need", items, 5, now)
	gt.A(t, result).Longer(0)
	gt.Equal(t, result[0].Title, "Attention is All You Need")

	matches := retrieval.TitleMatches("attention is all you need", items)
	gt.A(t, matches).Length(1)
	gt.Equal(t, matches[0].Title, "Attention is All You Need")
}

func TestRetrieveDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	items := []*model.Item{
		newItem("zebra", ""),
		newItem("apple pie recipe", ""),
		newItem("apple tree care", ""),
	}

	_ = retrieval.Retrieve("apple", items, 2, now)

	gt.Equal(t, items[0].Title, "zebra")
	gt.Equal(t, items[1].Title, "apple pie recipe")
	gt.Equal(t, items[2].Title, "apple tree care")
}
