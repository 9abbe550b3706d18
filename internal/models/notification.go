package models

import "time"

// NotificationKind classifies engagement notifications.
type NotificationKind string

const (
	NotificationPostVote     NotificationKind = "post_vote"
	NotificationCommentVote  NotificationKind = "comment_vote"
	NotificationPostComment  NotificationKind = "post_comment"
	NotificationCommentReply NotificationKind = "comment_reply"
)

// Notification tells a user that someone engaged with their content.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipientId"`
	ActorID     uint             `gorm:"not null;index" json:"actorId"`
	Kind        NotificationKind `gorm:"size:32;not null" json:"kind"`
	PostID      *uint            `json:"postId,omitempty"`
	CommentID   *uint            `json:"commentId,omitempty"`
	IsRead      bool             `gorm:"not null;default:false" json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}
