package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// engine wires real repositories over an in-memory sqlite database.
type engine struct {
	t        *testing.T
	db       *gorm.DB
	stores   *repository.Stores
	ledger   *ReactionLedger
	posts    *PostService
	comments *CommentService
	feed     *FeedService
	tree     *CommentTreeAssembler
	clock    time.Time
}

func newEngine(t *testing.T, flags string, c *cache.Cache, ttl time.Duration) *engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.RunMigrations(context.Background(), db))

	e := &engine{t: t, db: db, stores: repository.New(db, nil), clock: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	ff := featureflags.NewManager(flags)
	obs := Observers{DashboardInvalidator{Cache: c}}
	audit := NewAuditTrail(e.stores.Revisions)
	audit.now = e.tick

	e.ledger = NewReactionLedger(e.stores.Reactions, e.stores.Posts, e.stores.Comments, e.stores.Users.IsAdmin, obs)
	e.ledger.now = e.tick
	e.posts = NewPostService(e.stores.Posts, audit, e.stores.Users.IsAdmin, obs)
	e.posts.now = e.tick
	e.comments = NewCommentService(e.stores.Comments, e.stores.Posts, audit, e.stores.Users.IsAdmin, obs)
	e.comments.now = e.tick
	e.tree = NewCommentTreeAssembler(e.stores.Comments, e.stores.Reactions, e.stores.Users, ff)
	e.feed = NewFeedService(e.stores, e.tree, NewRanker(), ff, c, ttl)
	return e
}

func (e *engine) tick() time.Time {
	e.clock = e.clock.Add(time.Minute)
	return e.clock
}

func (e *engine) user(name string) *models.User {
	e.t.Helper()
	email := name + "@example.com"
	u := &models.User{Username: name, FullName: name + " Writer", Email: &email}
	require.NoError(e.t, e.stores.Users.Create(context.Background(), u))
	return u
}

func (e *engine) post(authorID uint, title string) *models.Post {
	e.t.Helper()
	p, err := e.posts.CreatePost(context.Background(), CreatePostInput{UserID: authorID, Title: title, Body: title + " body"})
	require.NoError(e.t, err)
	return p
}

func (e *engine) comment(authorID, postID uint, text string) *models.Comment {
	e.t.Helper()
	c, err := e.comments.CommentOnPost(context.Background(), authorID, postID, text)
	require.NoError(e.t, err)
	return c
}

func (e *engine) reply(authorID, parentID uint, text string) *models.Comment {
	e.t.Helper()
	c, err := e.comments.ReplyToComment(context.Background(), authorID, parentID, text)
	require.NoError(e.t, err)
	return c
}

func (e *engine) vote(reactorID uint, target models.Target, kind models.ReactionKind) {
	e.t.Helper()
	_, err := e.ledger.CastVote(context.Background(), target, reactorID, kind)
	require.NoError(e.t, err)
}
