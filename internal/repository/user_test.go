package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantName     string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "full_name"}).AddRow(1, "ada", "Ada Lovelace"))
			},
			wantName: "Ada Lovelace",
		},
		{
			name:   "Not Found",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, models.HasCode(err, tt.wantCode), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, user.DisplayName())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	admin := &models.User{Username: "root", Email: email("root@example.com"), IsAdmin: true}
	require.NoError(t, repo.Create(ctx, admin))
	plain := &models.User{Username: "pat", Email: email("pat@example.com")}
	require.NoError(t, repo.Create(ctx, plain))

	err := repo.Create(ctx, &models.User{Username: "pat", Email: email("other@example.com")})
	assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)

	isAdmin, err := repo.IsAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = repo.IsAdmin(ctx, plain.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = repo.IsAdmin(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	byID, err := repo.GetByIDs(ctx, []uint{admin.ID, plain.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "pat", byID[plain.ID].Username)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepository_DeleteCascade(t *testing.T) {
	db := setupSQLiteDB(t)
	f := newFixtures(t, db)
	ctx := context.Background()
	repo := NewUserRepository(db)

	alice := f.user("alice")
	bob := f.user("bob")

	alicePost := f.post(alice.ID, "alice's post", "https://img.example.com/a.png")
	bobPost := f.post(bob.ID, "bob's post")

	f.comment(bob.ID, alicePost.ID, "bob on alice")
	aliceComment := f.comment(alice.ID, bobPost.ID, "alice on bob")
	bobReply := f.reply(bob.ID, aliceComment, "bob replies")

	f.vote(bob.ID, models.PostTarget(alicePost.ID), models.ReactionUpvote)
	f.vote(alice.ID, models.PostTarget(bobPost.ID), models.ReactionUpvote)
	f.vote(bob.ID, models.CommentTarget(aliceComment.ID), models.ReactionSentiment)

	revs := NewRevisionRepository(db)
	require.NoError(t, revs.CreatePostRevision(ctx, &models.PostRevision{PostID: alicePost.ID, Title: "old", Body: "old", EditedBy: alice.ID, EditedAt: f.tick()}))
	require.NoError(t, revs.CreateCommentRevision(ctx, &models.CommentRevision{CommentID: aliceComment.ID, Text: "old", EditedBy: alice.ID, EditedAt: f.tick()}))
	require.NoError(t, NewNotificationRepository(db).Create(ctx, &models.Notification{
		RecipientID: bob.ID, ActorID: alice.ID, Kind: models.NotificationPostVote, CreatedAt: f.tick(),
	}))

	require.NoError(t, repo.DeleteCascade(ctx, alice.ID))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(&models.User{}))
	assert.Equal(t, int64(1), count(&models.Post{}))
	assert.Equal(t, int64(0), count(&models.PostImage{}))
	assert.Equal(t, int64(0), count(&models.Reaction{}))
	assert.Equal(t, int64(0), count(&models.PostRevision{}))
	assert.Equal(t, int64(0), count(&models.CommentRevision{}))
	assert.Equal(t, int64(0), count(&models.Notification{}))

	var remaining []models.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, bobReply.ID, remaining[0].ID)

	err := repo.DeleteCascade(ctx, alice.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound), "got %v", err)
}

func TestUserRepository_EnsureUser(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	created, err := repo.EnsureUser(ctx, 42, now)
	require.NoError(t, err)
	assert.Equal(t, uint(42), created.ID)
	assert.Equal(t, "user-42", created.Username)
	assert.Nil(t, created.Email)

	// A second call keeps the existing row and its details.
	_, err = repo.UpdateProfile(ctx, 42, "Ada Writer", "555-0100")
	require.NoError(t, err)
	again, err := repo.EnsureUser(ctx, 42, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Ada Writer", again.FullName)
	assert.True(t, again.CreatedAt.Equal(now))

	// Placeholder rows without an email do not collide on the unique index.
	_, err = repo.EnsureUser(ctx, 43, now)
	require.NoError(t, err)

	// Another account already holds the placeholder name.
	require.NoError(t, repo.Create(ctx, &models.User{ID: 500, Username: "user-77"}))
	_, err = repo.EnsureUser(ctx, 77, now)
	assert.True(t, models.HasCode(err, models.CodeIntegrityViolation), "got %v", err)
}

func TestUserRepository_UpdateProfileAndList(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	f := newFixtures(t, db)
	a, b, c := f.user("a"), f.user("b"), f.user("c")

	updated, err := repo.UpdateProfile(ctx, b.ID, "Bea", "123")
	require.NoError(t, err)
	assert.Equal(t, "Bea", updated.FullName)
	assert.Equal(t, "123", updated.MobileNo)

	_, err = repo.UpdateProfile(ctx, 999, "Nobody", "")
	assert.True(t, models.HasCode(err, models.CodeNotFound), "got %v", err)

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, []uint{a.ID, b.ID}, []uint{page[0].ID, page[1].ID})

	page, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, c.ID, page[0].ID)
}
