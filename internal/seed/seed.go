// Package seed fills a development database with synthetic blogs, threads
// and votes. It writes through the repositories so seeded data obeys the
// same rules as API traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much data is generated.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// RepliesPerComment is the maximum number of direct replies per comment.
	RepliesPerComment int
	// MaxDepth bounds reply nesting below the top-level comment.
	MaxDepth int
	VotesPerPost int
	Admins       int
	// MaxDays spreads creation times over the past N days.
	MaxDays int
	// Seed makes runs reproducible; 0 picks a time-based seed.
	Seed int64
}

// DefaultOptions is a small but well connected data set.
var DefaultOptions = Options{
	Users:             20,
	Posts:             60,
	CommentsPerPost:   4,
	RepliesPerComment: 2,
	MaxDepth:          2,
	VotesPerPost:      8,
	Admins:            1,
	MaxDays:           60,
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Reactions int
}

// Seeder generates data through the repositories.
type Seeder struct {
	db     *gorm.DB
	stores *repository.Stores
	faker  *gofakeit.Faker
	opts   Options
	now    time.Time
}

// NewSeeder binds a seeder to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = DefaultOptions.MaxDays
	}
	return &Seeder{
		db:     db,
		stores: repository.New(db, nil),
		faker:  gofakeit.New(seed),
		opts:   opts,
		now:    time.Now().UTC(),
	}
}

// ClearAll hard-deletes every engagement table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.Notification{},
		&models.Reaction{},
		&models.CommentRevision{},
		&models.PostRevision{},
		&models.Comment{},
		&models.PostImage{},
		&models.Post{},
		&models.User{},
	}
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, t := range tables {
		if err := tx.Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "seed: cleared existing data")
	return nil
}

// Run creates users, posts, comment threads and votes.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post, err := s.seedPost(ctx, author.ID)
		if err != nil {
			return sum, err
		}
		sum.Posts++

		n, err := s.seedThread(ctx, users, post)
		if err != nil {
			return sum, err
		}
		sum.Comments += n

		v, err := s.seedPostVotes(ctx, users, post)
		if err != nil {
			return sum, err
		}
		sum.Reactions += v
	}

	middleware.Logger.InfoContext(ctx, "seed: done",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("reactions", sum.Reactions),
	)
	return sum, nil
}

// pastTime returns a time within the configured window, after floor.
func (s *Seeder) pastTime(floor time.Time) time.Time {
	window := time.Duration(s.opts.MaxDays) * 24 * time.Hour
	start := s.now.Add(-window)
	if floor.After(start) {
		start = floor
	}
	span := s.now.Sub(start)
	if span <= 0 {
		return s.now
	}
	off := s.faker.Int64() % int64(span)
	if off < 0 {
		off = -off
	}
	return start.Add(time.Duration(off))
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		email := fmt.Sprintf("user%d.%s", i, s.faker.Email())
		u := &models.User{
			Username:  fmt.Sprintf("%s%d", s.faker.Username(), i),
			FullName:  s.faker.Name(),
			Email:     &email,
			MobileNo:  s.faker.Phone(),
			IsAdmin:   i < s.opts.Admins,
			CreatedAt: s.pastTime(time.Time{}),
		}
		if err := s.stores.Users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) seedPost(ctx context.Context, authorID uint) (*models.Post, error) {
	p := &models.Post{
		Title:     s.faker.Sentence(5),
		Body:      s.faker.Paragraph(2, 4, 12, "\n\n"),
		Mood:      s.faker.Adjective(),
		Location:  s.faker.City(),
		Lifecycle: models.NewLifecycle(authorID, s.pastTime(time.Time{})),
	}
	for range s.faker.Number(0, 2) {
		p.Images = append(p.Images, models.PostImage{
			URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", s.faker.UUID()),
		})
	}
	if err := s.stores.Posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// seedThread writes top-level comments and nested replies under post and
// returns how many comments it created.
func (s *Seeder) seedThread(ctx context.Context, users []*models.User, post *models.Post) (int, error) {
	created := 0
	postID := post.ID
	for range s.faker.Number(0, s.opts.CommentsPerPost) {
		c := &models.Comment{
			Text:         s.faker.Sentence(12),
			TargetIsPost: true,
			PostID:       &postID,
			Lifecycle:    models.NewLifecycle(users[s.faker.Number(0, len(users)-1)].ID, s.pastTime(post.CreatedAt)),
		}
		if err := s.stores.Comments.Create(ctx, c); err != nil {
			return created, fmt.Errorf("create comment: %w", err)
		}
		created++

		n, err := s.seedReplies(ctx, users, c, 1)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (s *Seeder) seedReplies(ctx context.Context, users []*models.User, parent *models.Comment, depth int) (int, error) {
	if depth > s.opts.MaxDepth {
		return 0, nil
	}
	created := 0
	for range s.faker.Number(0, s.opts.RepliesPerComment) {
		parentID := parent.ID
		reply := &models.Comment{
			Text:            s.faker.Sentence(8),
			TargetIsComment: true,
			PostID:          parent.PostID,
			ParentCommentID: &parentID,
			Lifecycle:       models.NewLifecycle(users[s.faker.Number(0, len(users)-1)].ID, s.pastTime(parent.CreatedAt)),
		}
		if err := s.stores.Comments.Create(ctx, reply); err != nil {
			return created, fmt.Errorf("create reply: %w", err)
		}
		created++

		if _, err := s.stores.Reactions.ReplaceVote(ctx, models.NewReaction(
			models.CommentTarget(reply.ID), models.ReactionSentiment, parent.CreatedBy, reply.CreatedAt,
		)); err != nil {
			return created, fmt.Errorf("react to reply: %w", err)
		}

		n, err := s.seedReplies(ctx, users, reply, depth+1)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// seedPostVotes casts up to VotesPerPost votes from distinct users, two
// upvotes for every downvote on average.
func (s *Seeder) seedPostVotes(ctx context.Context, users []*models.User, post *models.Post) (int, error) {
	n := min(s.faker.Number(0, s.opts.VotesPerPost), len(users))
	order := make([]int, len(users))
	for i := range order {
		order[i] = i
	}
	s.faker.ShuffleAnySlice(order)

	for _, idx := range order[:n] {
		kind := models.ReactionUpvote
		if s.faker.Number(0, 2) == 0 {
			kind = models.ReactionDownvote
		}
		r := models.NewReaction(models.PostTarget(post.ID), kind, users[idx].ID, s.pastTime(post.CreatedAt))
		if _, err := s.stores.Reactions.ReplaceVote(ctx, r); err != nil {
			return 0, fmt.Errorf("vote: %w", err)
		}
	}
	return n, nil
}

// Presets are named option sets for common local setups.
var Presets = map[string]Options{
	"Minimal": {Users: 3, Posts: 5, CommentsPerPost: 2, RepliesPerComment: 1, MaxDepth: 1, VotesPerPost: 3, Admins: 1, MaxDays: 7},
	"Default": DefaultOptions,
	"Busy":    {Users: 200, Posts: 1000, CommentsPerPost: 8, RepliesPerComment: 3, MaxDepth: 4, VotesPerPost: 40, Admins: 2, MaxDays: 365},
}

// PresetOptions looks up a preset by name.
func PresetOptions(name string) (Options, error) {
	opts, ok := Presets[name]
	if !ok {
		return Options{}, fmt.Errorf("unknown preset %q", name)
	}
	return opts, nil
}
