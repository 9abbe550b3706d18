package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// RevisionRepository stores append-only edit history.
type RevisionRepository interface {
	CreatePostRevision(ctx context.Context, rev *models.PostRevision) error
	CreateCommentRevision(ctx context.Context, rev *models.CommentRevision) error
	ListPostRevisions(ctx context.Context, postID uint) ([]*models.PostRevision, error)
	ListCommentRevisions(ctx context.Context, commentID uint) ([]*models.CommentRevision, error)
}

type revisionRepository struct {
	db *gorm.DB
}

func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) CreatePostRevision(ctx context.Context, rev *models.PostRevision) error {
	return wrapWrite(r.db.WithContext(ctx).Create(rev).Error)
}

func (r *revisionRepository) CreateCommentRevision(ctx context.Context, rev *models.CommentRevision) error {
	return wrapWrite(r.db.WithContext(ctx).Create(rev).Error)
}

func (r *revisionRepository) ListPostRevisions(ctx context.Context, postID uint) ([]*models.PostRevision, error) {
	var revs []*models.PostRevision
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("edited_at ASC, id ASC").
		Find(&revs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return revs, nil
}

func (r *revisionRepository) ListCommentRevisions(ctx context.Context, commentID uint) ([]*models.CommentRevision, error) {
	var revs []*models.CommentRevision
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("edited_at ASC, id ASC").
		Find(&revs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return revs, nil
}
