// Package server exposes the blog engagement engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	readDB         *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       *middleware.TokenVerifier
	rateLimiter    *middleware.RateLimiter
	featureFlags   *featureflags.Manager
	cache          *cache.Cache
	stores         *repository.Stores

	ledger         *service.ReactionLedger
	feed           *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	accountService *service.AccountService
	notifications  *notifications.Service
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	readDB, err := database.ConnectRead(cfg)
	if err != nil {
		// The primary serves reads when the replica is down.
		middleware.Logger.Warn("read replica unavailable", slog.String("error", err.Error()))
		readDB = nil
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, readDB, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// readDB and redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db, readDB *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		readDB:         readDB,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		verifier:       middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env, middleware.FailOpen),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		cache:          cache.New(redisClient),
		stores:         repository.New(db, readDB),
	}

	s.notifications = notifications.NewService(s.stores.Notifications, notifications.NewNotifier(redisClient))
	observer := service.Observers{
		service.DashboardInvalidator{Cache: s.cache},
		s.notifications,
	}

	audit := service.NewAuditTrail(s.stores.Revisions)
	tree := service.NewCommentTreeAssembler(s.stores.Comments, s.stores.Reactions, s.stores.Users, s.featureFlags)

	s.ledger = service.NewReactionLedger(s.stores.Reactions, s.stores.Posts, s.stores.Comments, s.isAdminByUserID, observer)
	s.feed = service.NewFeedService(s.stores, tree, service.NewRanker(), s.featureFlags, s.cache, cfg.DashboardCacheTTL())
	s.postService = service.NewPostService(s.stores.Posts, audit, s.isAdminByUserID, observer)
	s.commentService = service.NewCommentService(s.stores.Comments, s.stores.Posts, audit, s.isAdminByUserID, observer)
	s.accountService = service.NewAccountService(s.stores.Users, observer)

	return s, nil
}

// NewApp builds the fiber app with the standard error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Inkwell API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Tracing runs before ContextMiddleware so the trace id reaches logs.
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkwell Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	optional := middleware.OptionalAuth(s.verifier)
	auth := middleware.AuthRequired(s.verifier, s.redis)
	account := s.EnsureAccount()
	voteLimit := s.rateLimiter.Limit("vote", 60, time.Minute)
	commentLimit := s.rateLimiter.Limit("comment", 10, time.Minute)

	home := api.Group("/home")
	home.Get("/home-page-blogs", optional, s.GetHomePageBlogs)
	home.Get("/blogs-details/:id", optional, s.GetBlogDetails)
	home.Get("/my-blogs", auth, account, s.GetMyBlogs)
	home.Post("/upvote-downvote-blog", auth, account, voteLimit, s.VoteOnBlog)
	home.Post("/upvote-downvote-comment", auth, account, voteLimit, s.VoteOnComment)
	home.Post("/comment-for-blog", auth, account, commentLimit, s.CommentOnBlog)
	home.Post("/comment-for-comment", auth, account, commentLimit, s.ReplyToComment)
	home.Put("/update-comment", auth, account, s.UpdateComment)
	home.Delete("/delete-comment/:id", auth, account, s.DeleteComment)
	home.Delete("/remove-blog-reaction/:id", auth, account, s.RemoveBlogReactions)
	home.Delete("/remove-comment-reaction/:id", auth, account, s.RemoveCommentReactions)
	home.Get("/comments/:id/revisions", auth, account, s.GetCommentRevisions)

	blog := api.Group("/blog")
	blog.Post("/create-blog", auth, account, s.CreateBlog)
	blog.Put("/update-blog", auth, account, s.UpdateBlog)
	blog.Delete("/delete-blog/:id", auth, account, s.DeleteBlog)
	blog.Get("/:id/revisions", auth, account, s.GetBlogRevisions)

	profile := api.Group("/profile", auth, account)
	profile.Get("/me", s.GetMyProfile)
	profile.Patch("/update-profile-details", s.UpdateProfileDetails)
	profile.Delete("/delete-profile", s.DeleteProfile)

	notes := api.Group("/notifications", auth, account)
	notes.Get("/", s.GetNotifications)
	notes.Post("/:id/read", s.MarkNotificationRead)

	admin := api.Group("/admin", auth, account, s.AdminRequired())
	admin.Get("/dashboard-details", s.GetDashboardDetails)
	admin.Get("/get-all-users", s.GetAllUsers)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// Start starts the server
func (s *Server) Start() error {
	app := NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	for _, db := range []*gorm.DB{s.db, s.readDB} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
