package memory

import (
	"math/rand"
	"sort"

	"github.com/m-mizutani/nook/pkg/model"
)

const (
	// maxSampleItems bounds the summarization input size
	maxSampleItems = 20
	// maxRecentItems is how many fresh non-pinned items are always kept
	maxRecentItems = 5
)

// Sample selects the items fed to the summarization collaborator. Small
// collections pass through untouched. Larger ones keep every pinned item
// and the most recent non-pinned ones, then backfill the remaining budget
// pseudo-randomly from the rest. The backfill is not seeded, so memory
// text is not bit-for-bit reproducible across runs.
func Sample(items []*model.Item) []*model.Item {
	if len(items) <= maxSampleItems {
		return items
	}

	var pinned, rest []*model.Item
	for _, item := range items {
		if item.Pinned {
			pinned = append(pinned, item)
		} else {
			rest = append(rest, item)
		}
	}

	sorted := make([]*model.Item, len(rest))
	copy(sorted, rest)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	selected := make([]*model.Item, 0, maxSampleItems)
	// Pinned items are never dropped, even when they alone exceed the
	// budget; the ceiling only bounds the non-pinned backfill.
	selected = append(selected, pinned...)

	recentCount := maxRecentItems
	if recentCount > len(sorted) {
		recentCount = len(sorted)
	}
	for _, item := range sorted[:recentCount] {
		if len(selected) >= maxSampleItems {
			break
		}
		selected = append(selected, item)
	}

	pool := sorted[recentCount:]
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for _, item := range pool {
		if len(selected) >= maxSampleItems {
			break
		}
		selected = append(selected, item)
	}

	return selected
}
