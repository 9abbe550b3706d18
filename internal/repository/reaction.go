package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines persistence operations for votes.
type ReactionRepository interface {
	// ReplaceVote deactivates the reactor's active vote on the same target
	// and inserts r, atomically. It returns how many rows were deactivated.
	ReplaceVote(ctx context.Context, r *models.Reaction) (int64, error)
	DeactivateAllOnTarget(ctx context.Context, target models.Target) (int64, error)
	CountActiveForComment(ctx context.Context, commentID uint) (int64, error)
	CountActiveForComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	ViewerVote(ctx context.Context, target models.Target, userID uint) (models.ReactionKind, error)
	CountActivePostVotes(ctx context.Context, kind models.ReactionKind) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a reaction repository. Votes always read the
// primary so a viewer sees their own vote right away.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func scopeTarget(db *gorm.DB, target models.Target) *gorm.DB {
	if target.Kind == models.TargetComment {
		return db.Where("target_is_comment = ? AND comment_id = ?", true, target.ID)
	}
	return db.Where("target_is_post = ? AND post_id = ?", true, target.ID)
}

func reactionTarget(r *models.Reaction) models.Target {
	if r.TargetIsComment {
		return models.CommentTarget(r.TargetID())
	}
	return models.PostTarget(r.TargetID())
}

// ReplaceVote returns a unique-violation error (see IsUniqueViolation) when a
// concurrent vote by the same reactor won the race.
func (r *reactionRepository) ReplaceVote(ctx context.Context, reaction *models.Reaction) (int64, error) {
	if err := reaction.Validate(); err != nil {
		return 0, err
	}
	var deactivated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := scopeTarget(tx.Model(&models.Reaction{}), reactionTarget(reaction)).
			Where("created_by = ? AND is_active = ?", reaction.CreatedBy, true).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		deactivated = res.RowsAffected
		return tx.Create(reaction).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, err
		}
		return 0, wrapWrite(err)
	}
	return deactivated, nil
}

func (r *reactionRepository) DeactivateAllOnTarget(ctx context.Context, target models.Target) (int64, error) {
	res := scopeTarget(r.db.WithContext(ctx).Model(&models.Reaction{}), target).
		Where("is_active = ?", true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *reactionRepository) CountActiveForComment(ctx context.Context, commentID uint) (int64, error) {
	var n int64
	err := scopeTarget(r.db.WithContext(ctx).Model(&models.Reaction{}), models.CommentTarget(commentID)).
		Where("is_active = ? AND kind = ?", true, models.ReactionSentiment).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *reactionRepository) CountActiveForComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CommentID uint
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("comment_id, COUNT(*) AS total").
		Where("is_active = ? AND target_is_comment = ? AND kind = ? AND comment_id IN ?",
			true, true, models.ReactionSentiment, commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.CommentID] = row.Total
	}
	return out, nil
}

// ViewerVote returns the kind of the user's active vote on target, or 0.
func (r *reactionRepository) ViewerVote(ctx context.Context, target models.Target, userID uint) (models.ReactionKind, error) {
	if userID == 0 {
		return 0, nil
	}
	var kinds []models.ReactionKind
	err := scopeTarget(r.db.WithContext(ctx).Model(&models.Reaction{}), target).
		Where("is_active = ? AND created_by = ?", true, userID).
		Limit(1).
		Pluck("kind", &kinds).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if len(kinds) == 0 {
		return 0, nil
	}
	return kinds[0], nil
}

// CountActivePostVotes counts active votes of kind on active posts.
func (r *reactionRepository) CountActivePostVotes(ctx context.Context, kind models.ReactionKind) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("reactions AS v").
		Joins("JOIN posts AS p ON p.id = v.post_id").
		Where("v.is_active = ? AND v.target_is_post = ? AND v.kind = ? AND p.is_active = ?", true, true, kind, true).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
