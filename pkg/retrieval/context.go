package retrieval

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/nook/pkg/model"
)

// NoKnowledgeSentinel is returned instead of an empty context so the
// generation step can tell "found nothing" apart from "found empty text"
const NoKnowledgeSentinel = "No relevant knowledge found."

// entrySeparator visually splits items so the model can attribute
// statements to specific entries
const entrySeparator = "\n\n---\n\n"

// contentExcerptLimit caps the body excerpt per item (in runes)
const contentExcerptLimit = 500

// BuildContext renders ranked items into a single text block for the
// generation step. When includeContent is set, a truncated body excerpt is
// added per item. webResults, if any, are appended as a separate section.
func BuildContext(items []*model.Item, includeContent bool, webResults []string) string {
	base := NoKnowledgeSentinel

	if len(items) > 0 {
		entries := make([]string, len(items))
		for i, item := range items {
			entries[i] = renderEntry(i+1, item, includeContent)
		}
		base = strings.Join(entries, entrySeparator)
	}

	if len(webResults) > 0 {
		base += "\n\nWEB SEARCH RESULTS:\n" + strings.Join(webResults, "\n")
	}

	return base
}

func renderEntry(pos int, item *model.Item, includeContent bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d] %q", pos, item.Title)

	summary := item.Summary
	if summary == "" {
		summary = "No summary"
	}
	fmt.Fprintf(&sb, "\nSummary: %s", summary)

	if includeContent && item.Content != "" {
		fmt.Fprintf(&sb, "\nContent: %s", truncate(item.Content, contentExcerptLimit))
	}

	tags := "none"
	if len(item.Tags) > 0 {
		tags = strings.Join(item.Tags, ", ")
	}
	fmt.Fprintf(&sb, "\nTags: %s", tags)

	if item.URL != "" {
		fmt.Fprintf(&sb, "\nSource: %s", item.URL)
	}

	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
