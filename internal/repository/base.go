// Package repository implements the data access layer for the engine.
package repository

import (
	"errors"

	"inkwell/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Stores bundles every repository behind one primary and an optional read
// replica.
type Stores struct {
	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	Reactions     ReactionRepository
	Revisions     RevisionRepository
	Stats         StatsRepository
	Notifications NotificationRepository
}

// New wires all repositories. read may be nil.
func New(primary, read *gorm.DB) *Stores {
	return &Stores{
		Users:         NewUserRepository(primary),
		Posts:         NewPostRepository(primary, read),
		Comments:      NewCommentRepository(primary, read),
		Reactions:     NewReactionRepository(primary),
		Revisions:     NewRevisionRepository(primary),
		Stats:         NewStatsRepository(primary, read),
		Notifications: NewNotificationRepository(primary),
	}
}

func readDB(primary, replica *gorm.DB) *gorm.DB {
	if replica != nil {
		return replica
	}
	return primary
}

// IsUniqueViolation reports whether err came from a unique index, either
// translated by gorm or raised by Postgres directly.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func wrapLookup(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
