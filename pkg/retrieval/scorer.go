package retrieval

import (
	"strings"
	"time"

	"github.com/m-mizutani/nook/pkg/model"
)

// Scoring weights. Empirical constants: higher means stronger signal.
// Tune-able, but keep them internally consistent.
const (
	weightTitleMatchSet   = 20 // item is in the title-match set
	weightTitleContains   = 15 // whole query found in title
	weightSummaryContains = 8  // whole query found in summary
	weightContentContains = 6  // whole query found in content
	weightTitleWordCross  = 5  // query word and title word contain each other
	weightTagWord         = 4  // query word found in a tag
	weightPinned          = 3  // curated by the user
	weightTitleWord       = 3  // query word found in title
	weightSummaryWord     = 1  // query word found in summary
)

// Words shorter than this are ignored for word-level signals. Whole-query
// containment checks are unaffected.
const minWordLen = 3

// maxTitleMatches caps the title-match set
const maxTitleMatches = 5

// queryWords tokenizes a query for word-level matching
func queryWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= minWordLen {
			words = append(words, w)
		}
	}
	return words
}

// TitleMatches returns up to 5 items whose title contains the whole query,
// or any query word of 3+ characters, case-insensitively. A non-empty
// result indicates the user is likely asking about a specific saved item.
func TitleMatches(query string, items []*model.Item) []*model.Item {
	queryLower := strings.ToLower(query)
	words := queryWords(query)

	var matches []*model.Item
	for _, item := range items {
		title := strings.ToLower(item.Title)
		if !strings.Contains(title, queryLower) && !anyWordIn(words, title) {
			continue
		}
		matches = append(matches, item)
		if len(matches) >= maxTitleMatches {
			break
		}
	}
	return matches
}

func anyWordIn(words []string, s string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Score computes the relevance of one item against a query. Pure and
// deterministic: identical inputs always yield the same score. A score of
// zero means no detected relevance; it never excludes the item by itself.
// titleMatched reports whether the item belongs to the title-match set
// computed once per query via TitleMatches.
func Score(query string, item *model.Item, now time.Time, titleMatched bool) float64 {
	queryLower := strings.ToLower(query)
	words := queryWords(query)

	title := strings.ToLower(item.Title)
	summary := strings.ToLower(item.Summary)
	content := strings.ToLower(item.Content)

	var score float64

	if titleMatched {
		score += weightTitleMatchSet
	}

	if strings.Contains(title, queryLower) {
		score += weightTitleContains
	}

	titleWords := strings.Fields(title)
	for _, w := range words {
		for _, tw := range titleWords {
			if strings.Contains(tw, w) || strings.Contains(w, tw) {
				score += weightTitleWordCross
				break
			}
		}
	}

	if summary != "" && strings.Contains(summary, queryLower) {
		score += weightSummaryContains
	}
	if content != "" && strings.Contains(content, queryLower) {
		score += weightContentContains
	}

	for _, w := range words {
		if strings.Contains(title, w) {
			score += weightTitleWord
		}
		if summary != "" && strings.Contains(summary, w) {
			score += weightSummaryWord
		}
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), w) {
				score += weightTagWord
				break
			}
		}
	}

	if item.Pinned {
		score += weightPinned
	}

	score += recencyBonus(item.CreatedAt, now)

	return score
}

// recencyBonus gives newer items a slight edge
func recencyBonus(createdAt time.Time, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	age := now.Sub(createdAt)
	switch {
	case age < 7*24*time.Hour:
		return 2
	case age < 30*24*time.Hour:
		return 1
	default:
		return 0
	}
}
