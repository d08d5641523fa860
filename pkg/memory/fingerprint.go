package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/m-mizutani/nook/pkg/model"
)

// Fingerprint derives a content fingerprint for a collection of items. It
// covers item identities and their update timestamps, so in-place edits
// invalidate the cache, not only additions and removals. Item order does
// not matter.
func Fingerprint(items []*model.Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		ts := item.UpdatedAt
		if ts.IsZero() {
			ts = item.CreatedAt
		}
		lines = append(lines, string(item.ID)+"@"+strconv.FormatInt(ts.UnixNano(), 10))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
