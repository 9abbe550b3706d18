package repository

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixtures(t, db)
	ctx := context.Background()
	repo := NewNotificationRepository(db)

	var ids []uint
	for i := 0; i < 3; i++ {
		n := &models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationPostComment, CreatedAt: f.tick()}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{RecipientID: 2, ActorID: 1, Kind: models.NotificationCommentReply, CreatedAt: f.tick()}))

	page, err := repo.ListForUser(ctx, 1, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	rest, err := repo.ListForUser(ctx, 1, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)

	require.NoError(t, repo.MarkRead(ctx, ids[0], 1))
	err = repo.MarkRead(ctx, ids[1], 2)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	rest, err = repo.ListForUser(ctx, 1, 2, 2)
	require.NoError(t, err)
	assert.True(t, rest[0].IsRead)
}
