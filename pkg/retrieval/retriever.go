package retrieval

import (
	"sort"
	"time"

	"github.com/m-mizutani/nook/pkg/model"
)

// Default top-K values for the two retrieval modes
const (
	DefaultTopK      = 5
	SpecificItemTopK = 3
)

// Retrieve ranks items against the query and returns at most topK of them
// in strictly descending score order. Equal scores keep the original
// collection order. The input slice is not mutated.
func Retrieve(query string, items []*model.Item, topK int, now time.Time) []*model.Item {
	if len(items) == 0 || topK <= 0 {
		return nil
	}

	titleSet := make(map[model.ItemID]bool, maxTitleMatches)
	for _, item := range TitleMatches(query, items) {
		titleSet[item.ID] = true
	}

	type scoredItem struct {
		item  *model.Item
		score float64
	}

	scored := make([]scoredItem, len(items))
	for i, item := range items {
		scored[i] = scoredItem{
			item:  item,
			score: Score(query, item, now, titleSet[item.ID]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topK > len(scored) {
		topK = len(scored)
	}

	result := make([]*model.Item, topK)
	for i := range result {
		result[i] = scored[i].item
	}
	return result
}
