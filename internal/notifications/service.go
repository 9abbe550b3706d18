package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// Event is the JSON payload published for each notification.
type Event struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// Service records a notification whenever someone engages with another
// user's content. Delivery is best-effort: failures are logged and never
// surface to the request that caused them.
type Service struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	now      func() time.Time
}

func NewService(repo repository.NotificationRepository, notifier *Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

func (s *Service) VoteCast(ctx context.Context, r *models.Reaction, ownerID uint) {
	kind := models.NotificationPostVote
	n := &models.Notification{RecipientID: ownerID, ActorID: r.CreatedBy, PostID: r.PostID}
	if r.TargetIsComment {
		kind = models.NotificationCommentVote
		n.PostID = nil
		n.CommentID = r.CommentID
	}
	n.Kind = kind
	s.deliver(ctx, n)
}

func (s *Service) CommentAdded(ctx context.Context, c *models.Comment, ownerID uint) {
	id := c.ID
	n := &models.Notification{
		RecipientID: ownerID,
		ActorID:     c.CreatedBy,
		Kind:        models.NotificationPostComment,
		PostID:      c.PostID,
		CommentID:   &id,
	}
	if c.TargetIsComment {
		n.Kind = models.NotificationCommentReply
	}
	s.deliver(ctx, n)
}

// ContentChanged has nothing to notify.
func (s *Service) ContentChanged(context.Context) {}

func (s *Service) deliver(ctx context.Context, n *models.Notification) {
	if n.RecipientID == 0 || n.RecipientID == n.ActorID {
		return
	}
	n.CreatedAt = s.now()
	if err := s.repo.Create(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store notification",
			slog.String("kind", string(n.Kind)),
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()),
		)
		return
	}

	payload, err := json.Marshal(Event{Type: "notification", Notification: n})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to encode notification", slog.String("error", err.Error()))
		return
	}
	if err := s.notifier.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()),
		)
	}
}

// List returns a page of the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uint, page, pageSize int) ([]*models.Notification, error) {
	if page < 1 || pageSize < 1 {
		return nil, models.NewValidationError("pageNumber and pageSize must be positive")
	}
	return s.repo.ListForUser(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}
