package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLedger(reactions *reactionRepoStub, posts *postRepoStub, comments *commentRepoStub, obs Observer) *ReactionLedger {
	return NewReactionLedger(reactions, posts, comments, adminIs(99), obs)
}

func TestReactionLedger_CastVoteKindPartition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		target  models.Target
		kind    models.ReactionKind
		wantErr bool
	}{
		{"upvote post", models.PostTarget(1), models.ReactionUpvote, false},
		{"downvote post", models.PostTarget(1), models.ReactionDownvote, false},
		{"sentiment on post", models.PostTarget(1), models.ReactionSentiment, true},
		{"sentiment on comment", models.CommentTarget(1), models.ReactionSentiment, false},
		{"upvote comment", models.CommentTarget(1), models.ReactionUpvote, true},
		{"downvote comment", models.CommentTarget(1), models.ReactionDownvote, true},
		{"unknown kind", models.PostTarget(1), models.ReactionKind(7), true},
		{"zero target id", models.PostTarget(0), models.ReactionUpvote, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			replaced := 0
			reactions := noopReactionRepo()
			reactions.replaceVoteFn = func(_ context.Context, _ *models.Reaction) (int64, error) {
				replaced++
				return 0, nil
			}
			ledger := newTestLedger(reactions, noopPostRepo(), noopCommentRepo(), nil)

			r, err := ledger.CastVote(context.Background(), tt.target, 5, tt.kind)
			if tt.wantErr {
				assertValidationError(t, err)
				assert.Zero(t, replaced)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, replaced)
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, uint(5), r.CreatedBy)
			assert.True(t, r.IsActive)
			assert.Equal(t, tt.target.ID, r.TargetID())
		})
	}
}

func TestReactionLedger_CastVoteRequiresActiveTarget(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.getActiveByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	comments := noopCommentRepo()
	comments.getActiveByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	reactions := noopReactionRepo()
	reactions.replaceVoteFn = func(_ context.Context, _ *models.Reaction) (int64, error) {
		t.Fatal("no vote should be written for a missing target")
		return 0, nil
	}
	ledger := newTestLedger(reactions, posts, comments, nil)

	_, err := ledger.CastVote(context.Background(), models.PostTarget(3), 1, models.ReactionUpvote)
	assertAppCode(t, err, models.CodeNotFound)
	_, err = ledger.CastVote(context.Background(), models.CommentTarget(3), 1, models.ReactionSentiment)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestReactionLedger_CastVoteAnonymous(t *testing.T) {
	t.Parallel()
	ledger := newTestLedger(noopReactionRepo(), noopPostRepo(), noopCommentRepo(), nil)
	_, err := ledger.CastVote(context.Background(), models.PostTarget(1), 0, models.ReactionUpvote)
	assertUnauthorizedError(t, err)
}

func TestReactionLedger_CastVoteRetriesConflictOnce(t *testing.T) {
	t.Parallel()

	t.Run("second attempt succeeds", func(t *testing.T) {
		t.Parallel()
		calls := 0
		reactions := noopReactionRepo()
		reactions.replaceVoteFn = func(_ context.Context, _ *models.Reaction) (int64, error) {
			calls++
			if calls == 1 {
				return 0, gorm.ErrDuplicatedKey
			}
			return 1, nil
		}
		obs := &recordingObserver{}
		posts := noopPostRepo()
		posts.getActiveByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return activePost(id, 42), nil }
		ledger := newTestLedger(reactions, posts, noopCommentRepo(), obs)

		r, err := ledger.CastVote(context.Background(), models.PostTarget(8), 3, models.ReactionDownvote)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, models.ReactionDownvote, r.Kind)
		require.Len(t, obs.votes, 1)
		assert.Equal(t, []uint{42}, obs.owners)
	})

	t.Run("second conflict gives up", func(t *testing.T) {
		t.Parallel()
		calls := 0
		reactions := noopReactionRepo()
		reactions.replaceVoteFn = func(_ context.Context, _ *models.Reaction) (int64, error) {
			calls++
			return 0, gorm.ErrDuplicatedKey
		}
		obs := &recordingObserver{}
		ledger := newTestLedger(reactions, noopPostRepo(), noopCommentRepo(), obs)

		_, err := ledger.CastVote(context.Background(), models.PostTarget(8), 3, models.ReactionUpvote)
		assertAppCode(t, err, models.CodeInternal)
		assert.Equal(t, 2, calls)
		assert.Empty(t, obs.votes)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		boom := models.NewInternalError(errors.New("disk full"))
		reactions := noopReactionRepo()
		reactions.replaceVoteFn = func(_ context.Context, _ *models.Reaction) (int64, error) {
			calls++
			return 0, boom
		}
		ledger := newTestLedger(reactions, noopPostRepo(), noopCommentRepo(), nil)

		_, err := ledger.CastVote(context.Background(), models.PostTarget(8), 3, models.ReactionUpvote)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestReactionLedger_RetractAllVotes(t *testing.T) {
	t.Parallel()
	active := int64(2)
	reactions := noopReactionRepo()
	reactions.deactivateAllOnTargetFn = func(_ context.Context, _ models.Target) (int64, error) {
		n := active
		active = 0
		return n, nil
	}
	obs := &recordingObserver{}
	ledger := newTestLedger(reactions, noopPostRepo(), noopCommentRepo(), obs)
	ctx := context.Background()

	n, err := ledger.RetractAllVotes(ctx, models.PostTarget(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for i := 0; i < 2; i++ {
		n, err = ledger.RetractAllVotes(ctx, models.PostTarget(1))
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.Equal(t, 1, obs.changes)
}

func TestReactionLedger_RetractAllVotesAs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		callerID uint
		wantErr  bool
	}{
		{"author", 10, false},
		{"admin", 99, false},
		{"stranger", 11, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			comments := noopCommentRepo()
			comments.getActiveByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
				return activeComment(id, 1, 10), nil
			}
			retracted := false
			reactions := noopReactionRepo()
			reactions.deactivateAllOnTargetFn = func(_ context.Context, target models.Target) (int64, error) {
				assert.Equal(t, models.CommentTarget(4), target)
				retracted = true
				return 1, nil
			}
			ledger := newTestLedger(reactions, noopPostRepo(), comments, nil)

			_, err := ledger.RetractAllVotesAs(context.Background(), models.CommentTarget(4), tt.callerID)
			if tt.wantErr {
				assertUnauthorizedError(t, err)
				assert.False(t, retracted)
				return
			}
			require.NoError(t, err)
			assert.True(t, retracted)
		})
	}
}
