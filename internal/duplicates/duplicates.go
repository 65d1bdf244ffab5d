// Package duplicates flags submissions that probably describe an item
// already on the board.
package duplicates

import (
	"strings"

	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// PrefixLength is how many leading characters of the reference title must
// appear somewhere in a candidate's title.
const PrefixLength = 5

// Find returns the items in all that look like duplicates of reference, in
// the order they appear in all.
//
// A candidate matches when its lowercased title contains the first
// PrefixLength characters of the reference's lowercased title (or the whole
// title if it is shorter). The reference itself and pending items are never
// returned. Matching is plain substring containment, so titles that merely
// share a short prefix ("Blue Wallet", "Bluetooth Speaker") match too.
func Find(reference model.Item, all []model.Item) []model.Item {
	prefix := titlePrefix(reference.Title)

	var out []model.Item
	for _, candidate := range all {
		if candidate.ID == reference.ID {
			continue
		}
		if candidate.Status == model.StatusPending {
			continue
		}
		if strings.Contains(strings.ToLower(candidate.Title), prefix) {
			out = append(out, candidate)
		}
	}
	return out
}

// IDs returns the ids of items, in order.
func IDs(items []model.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func titlePrefix(title string) string {
	runes := []rune(strings.ToLower(title))
	if len(runes) > PrefixLength {
		runes = runes[:PrefixLength]
	}
	return string(runes)
}
