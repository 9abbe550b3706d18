package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const maxCommentLen = 5000

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	audit    *AuditTrail
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	observer Observer
	now      func() time.Time
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	audit *AuditTrail,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	observer Observer,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		audit:    audit,
		isAdmin:  isAdmin,
		observer: observerOrNop(observer),
		now:      time.Now,
	}
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 5000 characters)")
	}
	return text, nil
}

// CommentOnPost adds a top-level comment to an active post.
func (s *CommentService) CommentOnPost(ctx context.Context, userID, postID uint, text string) (*models.Comment, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("sign in to comment")
	}
	text, err := validateCommentText(text)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetActiveByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	pid := post.ID
	comment := &models.Comment{
		Text:         text,
		TargetIsPost: true,
		PostID:       &pid,
		Lifecycle:    models.NewLifecycle(userID, s.now()),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.observer.CommentAdded(ctx, comment, post.CreatedBy)
	return comment, nil
}

// ReplyToComment adds a reply under an active comment. The reply carries
// the post id of its thread.
func (s *CommentService) ReplyToComment(ctx context.Context, userID, parentID uint, text string) (*models.Comment, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("sign in to reply")
	}
	text, err := validateCommentText(text)
	if err != nil {
		return nil, err
	}
	parent, err := s.comments.GetActiveByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.PostID != nil {
		if _, err := s.posts.GetActiveByID(ctx, *parent.PostID); err != nil {
			return nil, err
		}
	}

	pid := parent.ID
	reply := &models.Comment{
		Text:            text,
		TargetIsComment: true,
		PostID:          parent.PostID,
		ParentCommentID: &pid,
		Lifecycle:       models.NewLifecycle(userID, s.now()),
	}
	if err := s.comments.Create(ctx, reply); err != nil {
		return nil, err
	}
	s.observer.CommentAdded(ctx, reply, parent.CreatedBy)
	return reply, nil
}

// UpdateComment snapshots and then rewrites a comment. Only the author may
// edit.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, text string) (*models.Comment, error) {
	text, err := validateCommentText(text)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetActiveByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.CreatedBy != userID {
		return nil, models.NewUnauthorizedError("only the author can edit this comment")
	}

	if _, err := s.audit.SnapshotComment(ctx, comment, userID); err != nil {
		return nil, err
	}

	comment.Text = text
	comment.MarkModified(userID, s.now())
	if err := s.comments.UpdateText(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment deactivates a comment, hiding its replies with it. The
// author or an admin may delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetActiveByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := ownerOrAdmin(ctx, s.isAdmin, comment.CreatedBy, userID, "only the author or an admin can delete this comment"); err != nil {
		return err
	}
	if err := s.comments.SoftDelete(ctx, comment.ID, userID, s.now()); err != nil {
		return err
	}
	s.observer.ContentChanged(ctx)
	return nil
}

// CommentRevisions lists a comment's history oldest first, also for deleted
// comments. Only the author or an admin may read it.
func (s *CommentService) CommentRevisions(ctx context.Context, callerID, commentID uint) ([]*models.CommentRevision, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(ctx, s.isAdmin, comment.CreatedBy, callerID, "only the author or an admin can view this history"); err != nil {
		return nil, err
	}
	return s.audit.CommentHistory(ctx, commentID)
}
