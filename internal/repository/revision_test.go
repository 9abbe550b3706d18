package repository

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionRepository_AppendOnlyHistory(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixtures(t, db)
	ctx := context.Background()
	repo := NewRevisionRepository(db)

	for _, title := range []string{"v1", "v2"} {
		require.NoError(t, repo.CreatePostRevision(ctx, &models.PostRevision{
			PostID: 4, Title: title, Body: "body", EditedBy: 1, EditedAt: f.tick(),
		}))
	}
	require.NoError(t, repo.CreatePostRevision(ctx, &models.PostRevision{
		PostID: 5, Title: "other", Body: "body", EditedBy: 1, EditedAt: f.tick(),
	}))

	revs, err := repo.ListPostRevisions(ctx, 4)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "v1", revs[0].Title)
	assert.Equal(t, "v2", revs[1].Title)
	assert.False(t, revs[0].IsActive)

	err = db.Model(revs[0]).Update("title", "rewritten").Error
	assert.True(t, errors.Is(err, models.ErrRevisionImmutable), "got %v", err)

	cr := &models.CommentRevision{CommentID: 8, Text: "first draft", EditedBy: 2, EditedAt: f.tick()}
	require.NoError(t, repo.CreateCommentRevision(ctx, cr))
	crevs, err := repo.ListCommentRevisions(ctx, 8)
	require.NoError(t, err)
	require.Len(t, crevs, 1)
	assert.Equal(t, "first draft", crevs[0].Text)

	err = db.Model(crevs[0]).Update("text", "edited").Error
	assert.True(t, errors.Is(err, models.ErrRevisionImmutable))

	none, err := repo.ListCommentRevisions(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
