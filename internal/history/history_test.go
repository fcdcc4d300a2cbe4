package history

import (
	"testing"

	"github.com/atelier-labs/fitroom/internal/models"
)

func entry(id string, favorite bool) models.NormalizedImage {
	return models.NormalizedImage{ID: id, MimeType: "image/jpeg", Favorite: favorite}
}

func ids(entries []models.NormalizedImage) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func equalIDs(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertFrontAndBound(t *testing.T) {
	var h []models.NormalizedImage
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		h = Insert(h, entry(id, false))
	}

	if len(h) != MaxEntries {
		t.Fatalf("Expected %d entries, got %d", MaxEntries, len(h))
	}
	want := []string{"7", "6", "5", "4", "3"}
	if !equalIDs(ids(h), want) {
		t.Errorf("Expected %v, got %v", want, ids(h))
	}
}

func TestEvictionIgnoresFavorites(t *testing.T) {
	var h []models.NormalizedImage
	h = Insert(h, entry("1", false))
	h = ToggleFavorite(h, "1")
	for _, id := range []string{"2", "3", "4", "5", "6"} {
		h = Insert(h, entry(id, false))
	}

	// Eviction is strictly tail-based; the favorited oldest entry is gone.
	if Find(h, "1") != nil {
		t.Error("Expected favorited tail entry to be evicted")
	}
	want := []string{"6", "5", "4", "3", "2"}
	if !equalIDs(ids(h), want) {
		t.Errorf("Expected %v, got %v", want, ids(h))
	}
}

func TestToggleFavorite(t *testing.T) {
	h := []models.NormalizedImage{entry("1", false), entry("2", false)}

	h = ToggleFavorite(h, "2")
	if !h[1].Favorite {
		t.Error("Expected entry 2 to be favorited")
	}
	if h[0].Favorite {
		t.Error("Expected entry 1 untouched")
	}

	h = ToggleFavorite(h, "2")
	if h[1].Favorite {
		t.Error("Expected second toggle to clear the flag")
	}
}

func TestToggleFavoriteUnknownIDIsNoOp(t *testing.T) {
	h := []models.NormalizedImage{entry("1", false)}
	got := ToggleFavorite(h, "missing")
	if len(got) != 1 || got[0].Favorite {
		t.Errorf("Expected unchanged history, got %+v", got)
	}
}

func TestDisplayOrder(t *testing.T) {
	tests := []struct {
		name     string
		entries  []models.NormalizedImage
		expected []string
	}{
		{
			name:     "favorites first then descending id",
			entries:  []models.NormalizedImage{entry("3", false), entry("1", true), entry("2", false)},
			expected: []string{"1", "3", "2"},
		},
		{
			name:     "no favorites is pure recency",
			entries:  []models.NormalizedImage{entry("5", false), entry("9", false), entry("7", false)},
			expected: []string{"9", "7", "5"},
		},
		{
			name:     "all favorites is pure recency",
			entries:  []models.NormalizedImage{entry("5", true), entry("9", true), entry("7", true)},
			expected: []string{"9", "7", "5"},
		},
		{
			name:     "same id keeps insertion order",
			entries:  []models.NormalizedImage{entry("5", false), entry("5", false)},
			expected: []string{"5", "5"},
		},
		{
			name:     "empty",
			entries:  nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(DisplayOrder(tt.entries))
			if !equalIDs(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDisplayOrderDoesNotMutateInput(t *testing.T) {
	h := []models.NormalizedImage{entry("1", false), entry("2", true)}
	DisplayOrder(h)
	if h[0].ID != "1" || h[1].ID != "2" {
		t.Errorf("Expected input order preserved, got %v", ids(h))
	}
}
