package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxTitleLen    = 255
	maxBodyLen     = 50000
	maxImagesCount = 10
)

type PostService struct {
	posts    repository.PostRepository
	audit    *AuditTrail
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	observer Observer
	now      func() time.Time
}

type CreatePostInput struct {
	UserID    uint
	Title     string
	Body      string
	Mood      string
	Location  string
	ImageURLs []string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Body     string
	Mood     string
	Location string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	posts repository.PostRepository,
	audit *AuditTrail,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	observer Observer,
) *PostService {
	return &PostService{
		posts:    posts,
		audit:    audit,
		isAdmin:  isAdmin,
		observer: observerOrNop(observer),
		now:      time.Now,
	}
}

func validatePostText(title, body string) (string, string, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" {
		return "", "", models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return "", "", models.NewValidationError("Title too long (max 255 characters)")
	}
	if body == "" {
		return "", "", models.NewValidationError("Body is required")
	}
	if len(body) > maxBodyLen {
		return "", "", models.NewValidationError("Body too long (max 50000 characters)")
	}
	return title, body, nil
}

func isImageURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("sign in to create posts")
	}
	title, body, err := validatePostText(in.Title, in.Body)
	if err != nil {
		return nil, err
	}
	if len(in.ImageURLs) > maxImagesCount {
		return nil, models.NewValidationError("A post can carry at most 10 images")
	}

	post := &models.Post{
		Title:     title,
		Body:      body,
		Mood:      strings.TrimSpace(in.Mood),
		Location:  strings.TrimSpace(in.Location),
		Lifecycle: models.NewLifecycle(in.UserID, s.now()),
	}
	for _, raw := range in.ImageURLs {
		raw = strings.TrimSpace(raw)
		if !isImageURL(raw) {
			return nil, models.NewValidationError("image urls must be absolute http(s) urls")
		}
		post.Images = append(post.Images, models.PostImage{URL: raw})
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.observer.ContentChanged(ctx)
	return post, nil
}

// UpdatePost snapshots the current post, then applies the edit. Only the
// author may edit.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	title, body, err := validatePostText(in.Title, in.Body)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetActiveByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatedBy != in.UserID {
		return nil, models.NewUnauthorizedError("only the author can edit this post")
	}

	if _, err := s.audit.SnapshotPost(ctx, post, in.UserID); err != nil {
		return nil, err
	}

	post.Title = title
	post.Body = body
	post.Mood = strings.TrimSpace(in.Mood)
	post.Location = strings.TrimSpace(in.Location)
	post.MarkModified(in.UserID, s.now())
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.observer.ContentChanged(ctx)
	return post, nil
}

// DeletePost deactivates a post. The author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.posts.GetActiveByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(ctx, post.CreatedBy, in.UserID); err != nil {
		return err
	}
	if err := s.posts.SoftDelete(ctx, post.ID, in.UserID, s.now()); err != nil {
		return err
	}
	s.observer.ContentChanged(ctx)
	return nil
}

// PostRevisions lists a post's history oldest first, also for deleted posts.
// Only the author or an admin may read it.
func (s *PostService) PostRevisions(ctx context.Context, callerID, postID uint) ([]*models.PostRevision, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAdmin(ctx, s.isAdmin, post.CreatedBy, callerID, "only the author or an admin can view this history"); err != nil {
		return nil, err
	}
	return s.audit.PostHistory(ctx, postID)
}

func (s *PostService) requireOwnerOrAdmin(ctx context.Context, ownerID, callerID uint) error {
	return ownerOrAdmin(ctx, s.isAdmin, ownerID, callerID, "only the author or an admin can delete this post")
}

func ownerOrAdmin(
	ctx context.Context,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	ownerID, callerID uint,
	denied string,
) error {
	if callerID != 0 && ownerID == callerID {
		return nil
	}
	if callerID != 0 && isAdmin != nil {
		admin, err := isAdmin(ctx, callerID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError(denied)
}
