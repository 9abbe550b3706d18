package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a fresh in-memory database with the full schema,
// including the partial unique indexes from the SQL migrations.
func setupSQLiteDB(t *testing.T) *gorm.DB {
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
	return db
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixtures struct {
	t   *testing.T
	db  *gorm.DB
	seq int
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	return &fixtures{t: t, db: db}
}

func (f *fixtures) tick() time.Time {
	f.seq++
	return baseTime.Add(time.Duration(f.seq) * time.Minute)
}

func email(addr string) *string { return &addr }

func (f *fixtures) user(name string) *models.User {
	f.t.Helper()
	u := &models.User{Username: name, Email: email(name + "@example.com"), CreatedAt: f.tick()}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixtures) post(authorID uint, title string, imageURLs ...string) *models.Post {
	f.t.Helper()
	p := &models.Post{Title: title, Body: title + " body", Lifecycle: models.NewLifecycle(authorID, f.tick())}
	for _, u := range imageURLs {
		p.Images = append(p.Images, models.PostImage{URL: u})
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

func (f *fixtures) comment(authorID, postID uint, text string) *models.Comment {
	f.t.Helper()
	pid := postID
	c := &models.Comment{Text: text, TargetIsPost: true, PostID: &pid, Lifecycle: models.NewLifecycle(authorID, f.tick())}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *fixtures) reply(authorID uint, parent *models.Comment, text string) *models.Comment {
	f.t.Helper()
	parentID := parent.ID
	c := &models.Comment{
		Text:            text,
		TargetIsComment: true,
		PostID:          parent.PostID,
		ParentCommentID: &parentID,
		Lifecycle:       models.NewLifecycle(authorID, f.tick()),
	}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *fixtures) vote(reactorID uint, target models.Target, kind models.ReactionKind) {
	f.t.Helper()
	_, err := NewReactionRepository(f.db).ReplaceVote(context.Background(), models.NewReaction(target, kind, reactorID, f.tick()))
	require.NoError(f.t, err)
}

func (f *fixtures) deactivateComment(c *models.Comment) {
	f.t.Helper()
	require.NoError(f.t, NewCommentRepository(f.db, nil).SoftDelete(context.Background(), c.ID, c.CreatedBy, f.tick()))
}
