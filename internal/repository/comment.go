package repository

import (
	"context"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments and replies.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Comment, error)
	ListActiveTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListActiveReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error)
	ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	UpdateText(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, id, deleterID uint, at time.Time) error
	CountActive(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db   *gorm.DB
	read *gorm.DB
}

// NewCommentRepository creates a comment repository. read may be nil.
func NewCommentRepository(db, read *gorm.DB) CommentRepository {
	return &commentRepository{db: db, read: read}
}

const threadOrder = "created_at ASC, id ASC"

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return wrapWrite(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, wrapLookup(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) GetActiveByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&comment, id).Error; err != nil {
		return nil, wrapLookup(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListActiveTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("is_active = ? AND target_is_post = ? AND post_id = ?", true, true, postID).
		Order(threadOrder).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListActiveReplies returns the active direct replies of every parent in
// parentIDs, oldest first.
func (r *commentRepository) ListActiveReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var comments []*models.Comment
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("is_active = ? AND target_is_comment = ? AND parent_comment_id IN ?", true, true, parentIDs).
		Order(threadOrder).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListActiveByPost returns the whole active thread of a post in one query.
func (r *commentRepository) ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("is_active = ? AND post_id = ?", true, postID).
		Order(threadOrder).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateText(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(comment).
		Where("is_active = ?", true).
		Select("text", "last_modified_by", "last_modified_at").
		Updates(comment)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id, deleterID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deleterID,
			"deleted_at": at,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// countReachableSQL walks each active post's thread from its active
// top-level comments through active replies. Replies under a deactivated or
// removed ancestor are not reachable.
const countReachableSQL = `
WITH RECURSIVE reachable(id) AS (
	SELECT c.id FROM comments AS c
	JOIN posts AS p ON p.id = c.post_id
	WHERE c.is_active = ? AND c.target_is_post = ? AND p.is_active = ?
	UNION
	SELECT c.id FROM comments AS c
	JOIN reachable AS r ON c.parent_comment_id = r.id
	WHERE c.is_active = ? AND c.target_is_comment = ?
)
SELECT COUNT(*) FROM reachable`

// CountActive counts the comments a reader can reach: active comments of
// active posts whose every ancestor is active too.
func (r *commentRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := readDB(r.db, r.read).WithContext(ctx).
		Raw(countReachableSQL, true, true, true, true, true).
		Scan(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
