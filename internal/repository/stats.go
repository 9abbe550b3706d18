package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// EngagementCounts are the active engagement totals of one post.
type EngagementCounts struct {
	Upvotes          int64 `json:"upvotes"`
	Downvotes        int64 `json:"downvotes"`
	TopLevelComments int64 `json:"topLevelComments"`
	Replies          int64 `json:"replies"`
}

// StatsRepository aggregates engagement for many posts at once.
type StatsRepository interface {
	PostStats(ctx context.Context, postIDs []uint) (map[uint]EngagementCounts, error)
}

type statsRepository struct {
	db   *gorm.DB
	read *gorm.DB
}

func NewStatsRepository(db, read *gorm.DB) StatsRepository {
	return &statsRepository{db: db, read: read}
}

type postCountRow struct {
	PostID uint
	Total  int64
}

// PostStats returns counts for every id in postIDs; posts without any
// engagement map to zero counts. Replies are active direct replies to
// active top-level comments of the post.
func (r *statsRepository) PostStats(ctx context.Context, postIDs []uint) (map[uint]EngagementCounts, error) {
	out := make(map[uint]EngagementCounts, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	for _, id := range postIDs {
		out[id] = EngagementCounts{}
	}
	db := readDB(r.db, r.read).WithContext(ctx)

	var votes []struct {
		PostID    uint
		Upvotes   int64
		Downvotes int64
	}
	err := db.Model(&models.Reaction{}).
		Select("post_id, "+
			"SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS upvotes, "+
			"SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END) AS downvotes",
			models.ReactionUpvote, models.ReactionDownvote).
		Where("is_active = ? AND target_is_post = ? AND post_id IN ?", true, true, postIDs).
		Group("post_id").
		Scan(&votes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, v := range votes {
		c := out[v.PostID]
		c.Upvotes, c.Downvotes = v.Upvotes, v.Downvotes
		out[v.PostID] = c
	}

	var top []postCountRow
	err = db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("is_active = ? AND target_is_post = ? AND post_id IN ?", true, true, postIDs).
		Group("post_id").
		Scan(&top).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range top {
		c := out[row.PostID]
		c.TopLevelComments = row.Total
		out[row.PostID] = c
	}

	var replies []postCountRow
	err = db.Table("comments AS r").
		Select("p.post_id AS post_id, COUNT(*) AS total").
		Joins("JOIN comments AS p ON p.id = r.parent_comment_id").
		Where("r.is_active = ? AND r.target_is_comment = ?", true, true).
		Where("p.is_active = ? AND p.target_is_post = ? AND p.post_id IN ?", true, true, postIDs).
		Group("p.post_id").
		Scan(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range replies {
		c := out[row.PostID]
		c.Replies = row.Total
		out[row.PostID] = c
	}
	return out, nil
}
