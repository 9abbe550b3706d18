// Package models contains the persisted domain records of the blogging engine.
package models

import "time"

// Lifecycle is the audit metadata shared by posts and comments. Records are
// never hard-deleted outside the account cascade; IsActive=false hides them
// from every read-side aggregation.
type Lifecycle struct {
	IsActive       bool       `gorm:"not null;index" json:"isActive"`
	CreatedBy      uint       `gorm:"not null;index" json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastModifiedBy *uint      `json:"lastModifiedBy,omitempty"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
	DeletedBy      *uint      `json:"deletedBy,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// NewLifecycle returns active metadata authored by userID at now.
func NewLifecycle(userID uint, now time.Time) Lifecycle {
	return Lifecycle{IsActive: true, CreatedBy: userID, CreatedAt: now}
}

// IsEdited reports whether the record carries modification metadata.
func (l Lifecycle) IsEdited() bool {
	return l.LastModifiedAt != nil
}

// MarkModified stamps editor metadata.
func (l *Lifecycle) MarkModified(editorID uint, now time.Time) {
	l.LastModifiedBy = &editorID
	l.LastModifiedAt = &now
}

// MarkDeleted deactivates the record and stamps deleter metadata.
func (l *Lifecycle) MarkDeleted(deleterID uint, now time.Time) {
	l.IsActive = false
	l.DeletedBy = &deleterID
	l.DeletedAt = &now
}
