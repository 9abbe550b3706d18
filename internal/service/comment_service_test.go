package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommentService(comments *commentRepoStub, posts *postRepoStub, revs *revisionRepoStub, obs Observer) *CommentService {
	return NewCommentService(comments, posts, NewAuditTrail(revs), adminIs(99), obs)
}

func TestCommentService_CommentOnPost(t *testing.T) {
	t.Parallel()
	var stored *models.Comment
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		require.NoError(t, c.Validate())
		stored = c
		return nil
	}
	posts := noopPostRepo()
	posts.getActiveByIDFn = func(_ context.Context, id uint) (*models.Post, error) { return activePost(id, 8), nil }
	obs := &recordingObserver{}
	svc := newTestCommentService(comments, posts, noopRevisionRepo(), obs)

	c, err := svc.CommentOnPost(context.Background(), 3, 5, "  nice post ")
	require.NoError(t, err)
	require.Same(t, stored, c)
	assert.Equal(t, "nice post", c.Text)
	assert.True(t, c.IsTopLevel())
	require.NotNil(t, c.PostID)
	assert.Equal(t, uint(5), *c.PostID)
	assert.Equal(t, []uint{8}, obs.owners)
}

func TestCommentService_CommentValidation(t *testing.T) {
	t.Parallel()
	svc := newTestCommentService(noopCommentRepo(), noopPostRepo(), noopRevisionRepo(), nil)
	ctx := context.Background()

	_, err := svc.CommentOnPost(ctx, 1, 1, "   ")
	assertValidationError(t, err)
	_, err = svc.ReplyToComment(ctx, 1, 1, strings.Repeat("x", maxCommentLen+1))
	assertValidationError(t, err)
	_, err = svc.UpdateComment(ctx, 1, 1, "")
	assertValidationError(t, err)
	_, err = svc.CommentOnPost(ctx, 0, 1, "hi")
	assertUnauthorizedError(t, err)
}

func TestCommentService_CommentOnInactivePost(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.getActiveByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		t.Fatal("comment must not be stored")
		return nil
	}
	svc := newTestCommentService(comments, posts, noopRevisionRepo(), nil)
	_, err := svc.CommentOnPost(context.Background(), 1, 2, "hello")
	assertAppCode(t, err, models.CodeNotFound)
}

func TestCommentService_ReplyCarriesThreadPost(t *testing.T) {
	t.Parallel()
	comments := noopCommentRepo()
	comments.getActiveByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return activeComment(id, 30, 6), nil
	}
	comments.createFn = func(_ context.Context, c *models.Comment) error { return c.Validate() }
	obs := &recordingObserver{}
	svc := newTestCommentService(comments, noopPostRepo(), noopRevisionRepo(), obs)

	reply, err := svc.ReplyToComment(context.Background(), 2, 11, "agreed")
	require.NoError(t, err)
	assert.True(t, reply.TargetIsComment)
	assert.False(t, reply.TargetIsPost)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, uint(11), *reply.ParentCommentID)
	require.NotNil(t, reply.PostID)
	assert.Equal(t, uint(30), *reply.PostID)
	assert.Equal(t, []uint{6}, obs.owners)
}

func TestCommentService_UpdateComment(t *testing.T) {
	t.Parallel()
	var snapshot string
	revs := noopRevisionRepo()
	revs.createCommentRevisionFn = func(_ context.Context, r *models.CommentRevision) error {
		snapshot = r.Text
		return nil
	}
	var updated string
	comments := noopCommentRepo()
	comments.getActiveByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		c := activeComment(id, 1, 4)
		c.Text = "first"
		return c, nil
	}
	comments.updateTextFn = func(_ context.Context, c *models.Comment) error {
		updated = c.Text
		return nil
	}
	svc := newTestCommentService(comments, noopPostRepo(), revs, nil)

	c, err := svc.UpdateComment(context.Background(), 4, 2, "second")
	require.NoError(t, err)
	assert.Equal(t, "first", snapshot)
	assert.Equal(t, "second", updated)
	assert.True(t, c.IsEdited())

	_, err = svc.UpdateComment(context.Background(), 99, 2, "admin edit")
	assertUnauthorizedError(t, err)
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()
	deletedBy := uint(0)
	comments := noopCommentRepo()
	comments.getActiveByIDFn = func(_ context.Context, id uint) (*models.Comment, error) { return activeComment(id, 1, 4), nil }
	comments.softDeleteFn = func(_ context.Context, _ uint, by uint, _ time.Time) error {
		deletedBy = by
		return nil
	}
	obs := &recordingObserver{}
	svc := newTestCommentService(comments, noopPostRepo(), noopRevisionRepo(), obs)

	assertUnauthorizedError(t, svc.DeleteComment(context.Background(), 5, 2))
	assert.Zero(t, deletedBy)

	require.NoError(t, svc.DeleteComment(context.Background(), 99, 2))
	assert.Equal(t, uint(99), deletedBy)
	assert.Equal(t, 1, obs.changes)
}
