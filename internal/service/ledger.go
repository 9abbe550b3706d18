package service

import (
	"context"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ReactionLedger records votes so that each reactor holds at most one active
// vote per target.
type ReactionLedger struct {
	reactions repository.ReactionRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
	observer  Observer
	now       func() time.Time
}

func NewReactionLedger(
	reactions repository.ReactionRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	observer Observer,
) *ReactionLedger {
	return &ReactionLedger{
		reactions: reactions,
		posts:     posts,
		comments:  comments,
		isAdmin:   isAdmin,
		observer:  observerOrNop(observer),
		now:       time.Now,
	}
}

// checkKind enforces the kind partition: posts take up/down, comments take
// the sentiment kind only.
func checkKind(target models.Target, kind models.ReactionKind) error {
	switch target.Kind {
	case models.TargetPost:
		if kind == models.ReactionUpvote || kind == models.ReactionDownvote {
			return nil
		}
		return models.NewValidationError("posts accept reaction kinds 1 (upvote) and 2 (downvote)")
	case models.TargetComment:
		if kind == models.ReactionSentiment {
			return nil
		}
		return models.NewValidationError("comments accept reaction kind 3 only")
	default:
		return models.NewValidationError("unknown vote target")
	}
}

// activeOwner returns the author of an active target.
func (l *ReactionLedger) activeOwner(ctx context.Context, target models.Target) (uint, error) {
	if target.ID == 0 {
		return 0, models.NewValidationError("target id is required")
	}
	if target.Kind == models.TargetComment {
		c, err := l.comments.GetActiveByID(ctx, target.ID)
		if err != nil {
			return 0, err
		}
		return c.CreatedBy, nil
	}
	p, err := l.posts.GetActiveByID(ctx, target.ID)
	if err != nil {
		return 0, err
	}
	return p.CreatedBy, nil
}

// CastVote replaces the reactor's active vote on target with a new one of
// kind. Re-casting the same kind still writes a fresh row.
func (l *ReactionLedger) CastVote(ctx context.Context, target models.Target, reactorID uint, kind models.ReactionKind) (reaction *models.Reaction, err error) {
	ctx, span := observability.StartSpan(ctx, "ledger", "cast_vote",
		attribute.String("target.kind", target.Kind.String()),
		attribute.Int64("target.id", int64(target.ID)),
		attribute.Int("reaction.kind", int(kind)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if reactorID == 0 {
		return nil, models.NewUnauthorizedError("a signed-in user is required to vote")
	}
	if err := checkKind(target, kind); err != nil {
		return nil, err
	}
	ownerID, err := l.activeOwner(ctx, target)
	if err != nil {
		return nil, err
	}

	reaction = models.NewReaction(target, kind, reactorID, l.now())
	_, err = l.reactions.ReplaceVote(ctx, reaction)
	if repository.IsUniqueViolation(err) {
		observability.VoteConflicts.Inc()
		middleware.Logger.WarnContext(ctx, "vote conflict, retrying",
			"target", target.Kind.String(), "target_id", target.ID)
		reaction = models.NewReaction(target, kind, reactorID, l.now())
		_, err = l.reactions.ReplaceVote(ctx, reaction)
	}
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewInternalError(err)
		}
		return nil, err
	}

	observability.VotesCast.WithLabelValues(target.Kind.String(), kind.String()).Inc()
	l.observer.VoteCast(ctx, reaction, ownerID)
	return reaction, nil
}

// RetractAllVotes deactivates every active vote on target, whoever cast it.
// It returns how many votes were retracted; zero is not an error.
func (l *ReactionLedger) RetractAllVotes(ctx context.Context, target models.Target) (n int64, err error) {
	ctx, span := observability.StartSpan(ctx, "ledger", "retract_all",
		attribute.String("target.kind", target.Kind.String()),
		attribute.Int64("target.id", int64(target.ID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	n, err = l.reactions.DeactivateAllOnTarget(ctx, target)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.VotesRetracted.WithLabelValues(target.Kind.String()).Add(float64(n))
		l.observer.ContentChanged(ctx)
	}
	return n, nil
}

// RetractAllVotesAs is RetractAllVotes restricted to the target's author or
// an admin.
func (l *ReactionLedger) RetractAllVotesAs(ctx context.Context, target models.Target, callerID uint) (int64, error) {
	ownerID, err := l.activeOwner(ctx, target)
	if err != nil {
		return 0, err
	}
	if ownerID != callerID {
		admin, err := l.isAdmin(ctx, callerID)
		if err != nil {
			return 0, err
		}
		if !admin {
			return 0, models.NewUnauthorizedError("only the author or an admin can remove reactions")
		}
	}
	return l.RetractAllVotes(ctx, target)
}
