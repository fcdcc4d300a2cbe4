package history

import (
	"sort"
	"strconv"

	"github.com/atelier-labs/fitroom/internal/models"
)

// MaxEntries bounds the retained history. Insertion is at the front and
// eviction is strictly tail-based; favorites affect display order only, not
// retention.
const MaxEntries = 5

// Insert prepends img and evicts from the tail beyond MaxEntries. The input
// slice is not mutated.
func Insert(entries []models.NormalizedImage, img models.NormalizedImage) []models.NormalizedImage {
	out := make([]models.NormalizedImage, 0, len(entries)+1)
	out = append(out, img)
	out = append(out, entries...)
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// ToggleFavorite flips the favorite flag of the entry with the given id,
// leaving all others untouched. An unknown id is a silent no-op.
func ToggleFavorite(entries []models.NormalizedImage, id string) []models.NormalizedImage {
	out := make([]models.NormalizedImage, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ID == id {
			out[i].Favorite = !out[i].Favorite
			break
		}
	}
	return out
}

// Find returns the entry with the given id, or nil.
func Find(entries []models.NormalizedImage, id string) *models.NormalizedImage {
	for i := range entries {
		if entries[i].ID == id {
			img := entries[i]
			return &img
		}
	}
	return nil
}

// DisplayOrder derives the presentation order from the current favorite flags
// and ids: favorites sort before non-favorites, and within each group entries
// sort by descending numeric id (ids are millisecond creation timestamps).
// The sort is stable, so same-millisecond entries keep their insertion order.
// The order is recomputed on every call, never cached.
func DisplayOrder(entries []models.NormalizedImage) []models.NormalizedImage {
	out := make([]models.NormalizedImage, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return recency(out[i].ID) > recency(out[j].ID)
	})
	return out
}

func recency(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
