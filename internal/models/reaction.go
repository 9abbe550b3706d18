package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ReactionKind is the vote type of a reaction.
type ReactionKind int

const (
	ReactionUpvote    ReactionKind = 1
	ReactionDownvote  ReactionKind = 2
	ReactionSentiment ReactionKind = 3 // comment-only
)

func (k ReactionKind) String() string {
	switch k {
	case ReactionUpvote:
		return "upvote"
	case ReactionDownvote:
		return "downvote"
	case ReactionSentiment:
		return "sentiment"
	default:
		return fmt.Sprintf("kind_%d", int(k))
	}
}

// Reaction is a vote by one user on one post or comment.
type Reaction struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Kind            ReactionKind `gorm:"not null" json:"reactionId"`
	TargetIsPost    bool         `gorm:"not null" json:"targetIsPost"`
	TargetIsComment bool         `gorm:"not null" json:"targetIsComment"`
	PostID          *uint        `gorm:"index" json:"postId,omitempty"`
	CommentID       *uint        `gorm:"index" json:"commentId,omitempty"`
	CreatedBy       uint         `gorm:"not null;index" json:"createdBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	IsActive        bool         `gorm:"not null;index" json:"isActive"`
}

// Validate enforces the target flag pair.
func (r *Reaction) Validate() error {
	if r.TargetIsPost == r.TargetIsComment {
		return NewIntegrityError("reaction must target exactly one of post or comment")
	}
	if r.TargetIsPost && (r.PostID == nil || r.CommentID != nil) {
		return NewIntegrityError("post reaction requires a post id only")
	}
	if r.TargetIsComment && (r.CommentID == nil || r.PostID != nil) {
		return NewIntegrityError("comment reaction requires a comment id only")
	}
	return nil
}

// BeforeCreate rejects inconsistent reactions at write time.
func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	return r.Validate()
}

// TargetID returns the id of the post or comment the reaction points at.
func (r *Reaction) TargetID() uint {
	if r.TargetIsPost && r.PostID != nil {
		return *r.PostID
	}
	if r.CommentID != nil {
		return *r.CommentID
	}
	return 0
}

// TargetKind says whether a vote points at a post or a comment.
type TargetKind int

const (
	TargetPost TargetKind = iota + 1
	TargetComment
)

func (k TargetKind) String() string {
	switch k {
	case TargetPost:
		return "post"
	case TargetComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Target identifies a votable record.
type Target struct {
	Kind TargetKind
	ID   uint
}

// PostTarget returns the target for post id.
func PostTarget(id uint) Target { return Target{Kind: TargetPost, ID: id} }

// CommentTarget returns the target for comment id.
func CommentTarget(id uint) Target { return Target{Kind: TargetComment, ID: id} }

// NewReaction builds an active reaction of kind by reactorID on target.
func NewReaction(target Target, kind ReactionKind, reactorID uint, now time.Time) *Reaction {
	id := target.ID
	r := &Reaction{
		Kind:      kind,
		CreatedBy: reactorID,
		CreatedAt: now,
		IsActive:  true,
	}
	switch target.Kind {
	case TargetPost:
		r.TargetIsPost = true
		r.PostID = &id
	case TargetComment:
		r.TargetIsComment = true
		r.CommentID = &id
	}
	return r
}
