package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrRevisionImmutable is returned when something tries to rewrite history.
var ErrRevisionImmutable = errors.New("revision rows are append-only")

// PostRevision is a snapshot of a post taken right before an update.
type PostRevision struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"not null;index" json:"postId"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Body     string    `gorm:"type:text;not null" json:"body"`
	Mood     string    `gorm:"size:100" json:"mood"`
	Location string    `gorm:"size:255" json:"location"`
	EditedBy uint      `gorm:"not null;index" json:"editedBy"`
	EditedAt time.Time `gorm:"not null" json:"editedAt"`
	IsActive bool      `gorm:"not null" json:"isActive"`
}

func (*PostRevision) BeforeUpdate(_ *gorm.DB) error { return ErrRevisionImmutable }

// CommentRevision is a snapshot of a comment taken right before an update.
type CommentRevision struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"commentId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	EditedBy  uint      `gorm:"not null;index" json:"editedBy"`
	EditedAt  time.Time `gorm:"not null" json:"editedAt"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
}

func (*CommentRevision) BeforeUpdate(_ *gorm.DB) error { return ErrRevisionImmutable }
