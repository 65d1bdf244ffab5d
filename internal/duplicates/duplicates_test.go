package duplicates

import (
	"reflect"
	"testing"

	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

func TestFindScenario(t *testing.T) {
	items := []model.Item{
		{ID: 1, Title: "Blue Wallet", Status: model.StatusFound},
		{ID: 2, Title: "Blue Backpack", Status: model.StatusFound},
		{ID: 3, Title: "Bluetooth Speaker", Status: model.StatusPending},
	}
	ref := model.Item{ID: 4, Title: "Blue Wallet Leather", Status: model.StatusPending}

	got := IDs(Find(ref, items))
	if want := []int64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFindExcludesSelfAndPending(t *testing.T) {
	ref := model.Item{ID: 1, Title: "Keys", Status: model.StatusFound}
	items := []model.Item{
		ref,
		{ID: 2, Title: "keys on a ring", Status: model.StatusPending},
		{ID: 3, Title: "Car KEYS", Status: model.StatusLost},
		{ID: 4, Title: "monkeys plush", Status: model.StatusRejected},
		{ID: 5, Title: "Key", Status: model.StatusResolved},
	}

	got := Find(ref, items)
	for _, it := range got {
		if it.ID == ref.ID {
			t.Error("reference item returned as its own duplicate")
		}
		if it.Status == model.StatusPending {
			t.Errorf("pending item %d returned", it.ID)
		}
	}
	// "keys" is shorter than the prefix length, so the whole title is used;
	// "monkeys" matches because containment is not word-aware.
	if want := []int64{3, 4}; !reflect.DeepEqual(IDs(got), want) {
		t.Errorf("expected %v, got %v", want, IDs(got))
	}
}

func TestFindPrefixTruncation(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		candidate string
		want      bool
	}{
		{"exact", "Phone", "phone", true},
		{"truncated to five", "Headphones", "HEADPHONE case", true},
		{"only first five compared", "Headphones", "my headset", false},
		{"sixth char ignored", "Laptop charger", "laptop bag", true},
		{"prefix missing", "Laptop", "lap desk", false},
		{"short title in full", "Pen", "open notebook", true},
		{"short title no match", "Pen", "pan", false},
		{"empty matches everything", "", "anything", true},
		{"multibyte runes", "Ключи от дома", "ключи", true},
		{"unicode case folding", "ÉCHARPE rouge", "une écharpe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := model.Item{ID: 1, Title: tt.reference, Status: model.StatusPending}
			cand := model.Item{ID: 2, Title: tt.candidate, Status: model.StatusFound}
			got := len(Find(ref, []model.Item{cand})) == 1
			if got != tt.want {
				t.Errorf("Find(%q, %q) matched = %v, want %v", tt.reference, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestFindPreservesOrder(t *testing.T) {
	items := []model.Item{
		{ID: 9, Title: "Black umbrella", Status: model.StatusLost},
		{ID: 2, Title: "Black UMBRELLA", Status: model.StatusFound},
		{ID: 5, Title: "black umbrella, small", Status: model.StatusResolved},
	}
	ref := model.Item{ID: 1, Title: "Black", Status: model.StatusPending}

	if want, got := []int64{9, 2, 5}, IDs(Find(ref, items)); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFindNoMatches(t *testing.T) {
	ref := model.Item{ID: 1, Title: "Calculator", Status: model.StatusPending}

	if got := Find(ref, nil); len(got) != 0 {
		t.Errorf("expected no matches on empty pool, got %v", got)
	}
	items := []model.Item{{ID: 2, Title: "Scarf", Status: model.StatusFound}}
	if got := Find(ref, items); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}
