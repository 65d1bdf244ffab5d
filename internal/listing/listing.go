// Package listing produces read-only views of the item collection: the
// moderation queue, category pages, the homepage preview and title search.
//
// Every function is pure and leaves its input slice untouched, so callers may
// share one snapshot between goroutines.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// Filter selects items by status. All is a sentinel, not a status.
type Filter string

// All disables status filtering.
const All Filter = "all"

// RecentLimit is how many items the homepage shows per category.
const RecentLimit = 3

// ErrUnknownFilter is returned by ParseFilter for values that are neither a
// status nor All.
var ErrUnknownFilter = errors.New("unknown status filter")

// Filters lists every filter in the order the admin dashboard shows them.
var Filters = []Filter{
	Filter(model.StatusPending),
	Filter(model.StatusLost),
	Filter(model.StatusFound),
	Filter(model.StatusResolved),
	Filter(model.StatusRejected),
	All,
}

// ParseFilter validates a filter received from a caller.
func ParseFilter(s string) (Filter, error) {
	f := Filter(s)
	if f == All || model.Status(s).Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func (f Filter) matches(it model.Item) bool {
	return f == All || it.Status == model.Status(f)
}

// FilterByStatus returns the items matching f, in their original order.
func FilterByStatus(items []model.Item, f Filter) []model.Item {
	if f == All {
		out := make([]model.Item, len(items))
		copy(out, items)
		return out
	}
	var out []model.Item
	for _, it := range items {
		if f.matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// CountByStatus returns len(FilterByStatus(items, f)) without building the slice.
func CountByStatus(items []model.Item, f Filter) int {
	if f == All {
		return len(items)
	}
	n := 0
	for _, it := range items {
		if f.matches(it) {
			n++
		}
	}
	return n
}

// Counts returns CountByStatus for every entry of Filters.
func Counts(items []model.Item) map[Filter]int {
	counts := make(map[Filter]int, len(Filters))
	for _, f := range Filters {
		counts[f] = 0
	}
	for _, it := range items {
		counts[Filter(it.Status)]++
	}
	counts[All] = len(items)
	return counts
}

// RecentByStatus returns up to limit items with status s, taken from the front
// of items. Stores list newest submissions first, so these are the most
// recent ones.
func RecentByStatus(items []model.Item, s model.Status, limit int) []model.Item {
	if limit <= 0 {
		return nil
	}
	var out []model.Item
	for _, it := range items {
		if it.Status != s {
			continue
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

// SearchByTitle returns the items whose title contains term, ignoring case.
// An empty term matches nothing; callers skip the search for blank input.
func SearchByTitle(items []model.Item, term string) []model.Item {
	if term == "" {
		return nil
	}
	needle := strings.ToLower(term)
	var out []model.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), needle) {
			out = append(out, it)
		}
	}
	return out
}
