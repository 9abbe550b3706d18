package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// AccountService manages user accounts.
type AccountService struct {
	users    repository.UserRepository
	observer Observer
	now      func() time.Time
}

type UpdateProfileInput struct {
	UserID   uint
	FullName string
	MobileNo string
}

func NewAccountService(users repository.UserRepository, observer Observer) *AccountService {
	return &AccountService{users: users, observer: observerOrNop(observer), now: time.Now}
}

// EnsureAccount makes sure an authenticated caller has a local user row so
// their content has an author to resolve and to cascade from.
func (s *AccountService) EnsureAccount(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("sign in first")
	}
	return s.users.EnsureUser(ctx, userID, s.now().UTC())
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile sets the caller's display details.
func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("sign in to update your profile")
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, models.NewValidationError("full name is required")
	}
	user, err := s.users.UpdateProfile(ctx, in.UserID, fullName, strings.TrimSpace(in.MobileNo))
	if err != nil {
		return nil, err
	}
	// Author names show up in cached dashboard rows.
	s.observer.ContentChanged(ctx)
	return user, nil
}

// ListUsers returns a page of all accounts ordered by id.
func (s *AccountService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, models.NewValidationError("pageNumber and pageSize must be positive")
	}
	users, total, err := s.users.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return users, int(total), nil
}

// DeleteAccount hard-deletes the user and everything they wrote.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("sign in to delete your account")
	}
	if err := s.users.DeleteCascade(ctx, userID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "account deleted", "deleted_user_id", userID)
	s.observer.ContentChanged(ctx)
	return nil
}
