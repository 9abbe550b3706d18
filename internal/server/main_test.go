package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-long-enough-123456"

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		AllowedOrigins:  "*",
		FeatureFlags:    "batched_comment_tree=on",
		JWTSecret:       testSecret,
		JWTIssuer:       "inkwell-api",
		JWTAudience:     "inkwell-client",
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

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

// testEnv is a full server over an in-memory database without Redis.
type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	srv *Server
	app *fiber.App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupSQLiteDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, nil, nil)
	require.NoError(t, err)

	app := NewApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return &testEnv{t: t, db: db, srv: srv, app: app}
}

func (e *testEnv) user(name string, admin bool) (*models.User, string) {
	e.t.Helper()
	email := name + "@example.com"
	u := &models.User{Username: name, FullName: name, Email: &email, IsAdmin: admin, CreatedAt: time.Now()}
	require.NoError(e.t, e.db.Create(u).Error)
	return u, e.token(u.ID)
}

func (e *testEnv) token(userID uint) string {
	e.t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "inkwell-api",
		"aud": "inkwell-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(e.t, err)
	return s
}

// seedPost inserts an active post directly with a fixed creation time.
func (e *testEnv) seedPost(authorID uint, title string, createdAt time.Time) *models.Post {
	e.t.Helper()
	p := &models.Post{Title: title, Body: title + " body", Lifecycle: models.NewLifecycle(authorID, createdAt)}
	require.NoError(e.t, e.db.Create(p).Error)
	return p
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	TotalCount *int            `json:"totalCount"`
	Result     json.RawMessage `json:"result"`
}

func (e *testEnv) do(method, target, token string, body any) (int, envelope) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decodeResult(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Result, dest), string(env.Result))
}

func urlf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
