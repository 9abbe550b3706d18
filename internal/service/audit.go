package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// AuditTrail writes revision rows ahead of every edit.
type AuditTrail struct {
	revisions repository.RevisionRepository
	now       func() time.Time
}

func NewAuditTrail(revisions repository.RevisionRepository) *AuditTrail {
	return &AuditTrail{revisions: revisions, now: time.Now}
}

// SnapshotPost persists the post's current editable fields. Call it before
// applying the edit.
func (a *AuditTrail) SnapshotPost(ctx context.Context, post *models.Post, editorID uint) (*models.PostRevision, error) {
	rev := &models.PostRevision{
		PostID:   post.ID,
		Title:    post.Title,
		Body:     post.Body,
		Mood:     post.Mood,
		Location: post.Location,
		EditedBy: editorID,
		EditedAt: a.now(),
	}
	if err := a.revisions.CreatePostRevision(ctx, rev); err != nil {
		return nil, err
	}
	observability.RevisionsWritten.WithLabelValues("post").Inc()
	return rev, nil
}

// SnapshotComment persists the comment's current text. Call it before
// applying the edit.
func (a *AuditTrail) SnapshotComment(ctx context.Context, comment *models.Comment, editorID uint) (*models.CommentRevision, error) {
	rev := &models.CommentRevision{
		CommentID: comment.ID,
		Text:      comment.Text,
		EditedBy:  editorID,
		EditedAt:  a.now(),
	}
	if err := a.revisions.CreateCommentRevision(ctx, rev); err != nil {
		return nil, err
	}
	observability.RevisionsWritten.WithLabelValues("comment").Inc()
	return rev, nil
}

func (a *AuditTrail) PostHistory(ctx context.Context, postID uint) ([]*models.PostRevision, error) {
	return a.revisions.ListPostRevisions(ctx, postID)
}

func (a *AuditTrail) CommentHistory(ctx context.Context, commentID uint) ([]*models.CommentRevision, error) {
	return a.revisions.ListCommentRevisions(ctx, commentID)
}
