package models

import "gorm.io/gorm"

// Comment is either a top-level comment on a post or a reply to another
// comment. Replies also carry the post id of their thread root.
type Comment struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Text            string `gorm:"type:text;not null" json:"text"`
	TargetIsPost    bool   `gorm:"not null" json:"targetIsPost"`
	TargetIsComment bool   `gorm:"not null" json:"targetIsComment"`
	PostID          *uint  `gorm:"index" json:"postId,omitempty"`
	ParentCommentID *uint  `gorm:"index" json:"parentCommentId,omitempty"`
	Lifecycle
}

// Validate enforces the target flag pair.
func (c *Comment) Validate() error {
	if c.TargetIsPost == c.TargetIsComment {
		return NewIntegrityError("comment must target exactly one of post or comment")
	}
	if c.TargetIsPost && (c.PostID == nil || c.ParentCommentID != nil) {
		return NewIntegrityError("top-level comment requires a post id and no parent comment")
	}
	if c.TargetIsComment && c.ParentCommentID == nil {
		return NewIntegrityError("reply requires a parent comment id")
	}
	return nil
}

// BeforeCreate rejects inconsistent comments at write time.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	return c.Validate()
}

// IsTopLevel reports whether the comment hangs directly off a post.
func (c *Comment) IsTopLevel() bool {
	return c.TargetIsPost
}
