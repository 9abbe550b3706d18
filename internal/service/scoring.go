package service

import "inkwell/internal/repository"

// Score is the popularity of a post: upvotes count double, downvotes count
// against, and every active top-level comment and direct reply adds one.
// The result may be negative.
func Score(c repository.EngagementCounts) int64 {
	return 2*c.Upvotes - c.Downvotes + c.TopLevelComments + c.Replies
}

// BloggerScore sums the scores of an author's active posts.
func BloggerScore(posts []ScoredPost) int64 {
	var total int64
	for _, p := range posts {
		total += p.Score
	}
	return total
}
