package service

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// SortStrategy orders a feed.
type SortStrategy int

const (
	SortByCreationTime SortStrategy = iota
	SortByPopularity
	SortRandom
)

func (s SortStrategy) String() string {
	switch s {
	case SortByCreationTime:
		return "recency"
	case SortByPopularity:
		return "popularity"
	default:
		return "random"
	}
}

// ParseSortStrategy maps a sortBy value to a strategy. Empty and "Recency"
// sort by creation time and "Popularity" by score, case-insensitively.
// Anything else shuffles, unless strict is set, in which case it is a
// validation error.
func ParseSortStrategy(raw string, strict bool) (SortStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "recency":
		return SortByCreationTime, nil
	case "popularity":
		return SortByPopularity, nil
	}
	if strict {
		return 0, models.NewValidationError("sortBy must be Recency or Popularity")
	}
	return SortRandom, nil
}

// ScoredPost is a post with its engagement counts and popularity score.
type ScoredPost struct {
	Post  *models.Post
	Stats repository.EngagementCounts
	Score int64
}

// Ranker orders and pages scored posts.
type Ranker struct {
	shuffle func(n int, swap func(i, j int))
}

func NewRanker() *Ranker {
	return &Ranker{shuffle: rand.Shuffle}
}

// Rank sorts a copy of items by strategy and returns the requested
// 1-indexed page with the total item count. Ties break by id ascending.
// A page or pageSize below 1 yields an empty page.
func (r *Ranker) Rank(items []ScoredPost, strategy SortStrategy, page, pageSize int) ([]ScoredPost, int) {
	sorted := slices.Clone(items)
	switch strategy {
	case SortByCreationTime:
		slices.SortFunc(sorted, func(a, b ScoredPost) int {
			if c := b.Post.CreatedAt.Compare(a.Post.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.Post.ID, b.Post.ID)
		})
	case SortByPopularity:
		slices.SortFunc(sorted, func(a, b ScoredPost) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			return cmp.Compare(a.Post.ID, b.Post.ID)
		})
	default:
		r.shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
	}
	return Paginate(sorted, page, pageSize), len(sorted)
}

// Paginate returns items[(page-1)*pageSize : page*pageSize], clamped.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 || len(items) == 0 {
		return []T{}
	}
	if pages := (len(items)-1)/pageSize + 1; page > pages {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}
