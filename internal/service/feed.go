package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const dashboardTopN = 10

// FeedQuery is a paged, sorted feed request.
type FeedQuery struct {
	Page     int
	PageSize int
	SortBy   string
}

// PostView is a post with its author, engagement counts and score.
type PostView struct {
	models.Post
	AuthorName string                      `json:"authorName"`
	IsEdited   bool                        `json:"isEdited"`
	Score      int64                       `json:"score"`
	Stats      repository.EngagementCounts `json:"stats"`
}

// PostDetail is a post with the viewer's vote and its full comment tree.
type PostDetail struct {
	PostView
	ViewerVote models.ReactionKind `json:"viewerVote"`
	Comments   []CommentNode       `json:"comments"`
}

type DashboardPost struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	AuthorID   uint   `json:"authorId"`
	AuthorName string `json:"authorName"`
	Score      int64  `json:"score"`
}

type DashboardBlogger struct {
	UserID    uint   `json:"userId"`
	Name      string `json:"name"`
	PostCount int    `json:"postCount"`
	Score     int64  `json:"score"`
}

// Dashboard is the platform-wide engagement summary.
type Dashboard struct {
	TotalPosts     int64              `json:"totalPosts"`
	TotalComments  int64              `json:"totalComments"`
	TotalUpvotes   int64              `json:"totalUpvotes"`
	TotalDownvotes int64              `json:"totalDownvotes"`
	TopPosts       []DashboardPost    `json:"topPosts"`
	TopBloggers    []DashboardBlogger `json:"topBloggers"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}

// FeedService is the read facade: feeds, post detail and the dashboard.
type FeedService struct {
	posts        repository.PostRepository
	comments     repository.CommentRepository
	reactions    repository.ReactionRepository
	stats        repository.StatsRepository
	users        repository.UserRepository
	tree         *CommentTreeAssembler
	ranker       *Ranker
	flags        *featureflags.Manager
	cache        *cache.Cache
	dashboardTTL time.Duration
	now          func() time.Time
}

func NewFeedService(
	stores *repository.Stores,
	tree *CommentTreeAssembler,
	ranker *Ranker,
	flags *featureflags.Manager,
	c *cache.Cache,
	dashboardTTL time.Duration,
) *FeedService {
	return &FeedService{
		posts:        stores.Posts,
		comments:     stores.Comments,
		reactions:    stores.Reactions,
		stats:        stores.Stats,
		users:        stores.Users,
		tree:         tree,
		ranker:       ranker,
		flags:        flags,
		cache:        c,
		dashboardTTL: dashboardTTL,
		now:          time.Now,
	}
}

func (s *FeedService) score(ctx context.Context, posts []*models.Post) ([]ScoredPost, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := s.stats.PostStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredPost, len(posts))
	for i, p := range posts {
		c := counts[p.ID]
		out[i] = ScoredPost{Post: p, Stats: c, Score: Score(c)}
	}
	return out, nil
}

// views decorates a page with images and author names.
func (s *FeedService) views(ctx context.Context, page []ScoredPost) ([]PostView, error) {
	ids := make([]uint, len(page))
	authorIDs := make([]uint, 0, len(page))
	for i, sp := range page {
		ids[i] = sp.Post.ID
		authorIDs = append(authorIDs, sp.Post.CreatedBy)
	}
	images, err := s.posts.ListImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]PostView, len(page))
	for i, sp := range page {
		post := *sp.Post
		post.Images = images[post.ID]
		out[i] = PostView{
			Post:       post,
			AuthorName: authors[post.CreatedBy].DisplayName(),
			IsEdited:   post.IsEdited(),
			Score:      sp.Score,
			Stats:      sp.Stats,
		}
	}
	return out, nil
}

func (s *FeedService) rankedPage(ctx context.Context, posts []*models.Post, viewerID uint, q FeedQuery) ([]PostView, int, error) {
	strategy, err := ParseSortStrategy(q.SortBy, s.flags.Enabled(featureflags.StrictSort, viewerID))
	if err != nil {
		return nil, 0, err
	}
	scored, err := s.score(ctx, posts)
	if err != nil {
		return nil, 0, err
	}
	page, total := s.ranker.Rank(scored, strategy, q.Page, q.PageSize)
	views, err := s.views(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// HomeFeed ranks and pages every active post. totalCount is the number of
// active posts before paging.
func (s *FeedService) HomeFeed(ctx context.Context, viewerID uint, q FeedQuery) (views []PostView, total int, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "home",
		attribute.String("sort_by", q.SortBy), attribute.Int("page", q.Page))
	defer func() { observability.EndSpan(span, err) }()

	posts, err := s.posts.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.rankedPage(ctx, posts, viewerID, q)
}

// MyPosts ranks and pages the caller's own active posts.
func (s *FeedService) MyPosts(ctx context.Context, callerID uint, q FeedQuery) (views []PostView, total int, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "mine", attribute.Int64("user.id", int64(callerID)))
	defer func() { observability.EndSpan(span, err) }()

	if callerID == 0 {
		return nil, 0, models.NewUnauthorizedError("sign in to list your posts")
	}
	posts, err := s.posts.ListActiveByAuthor(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.rankedPage(ctx, posts, callerID, q)
}

// PostDetail returns an active post with its comment tree and the viewer's
// own vote (0 for anonymous viewers or no vote).
func (s *FeedService) PostDetail(ctx context.Context, viewerID, postID uint) (detail *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "detail", attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetActiveByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	scored, err := s.score(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, scored)
	if err != nil {
		return nil, err
	}
	vote, err := s.reactions.ViewerVote(ctx, models.PostTarget(postID), viewerID)
	if err != nil {
		return nil, err
	}
	comments, err := s.tree.AssembleReplies(ctx, postID, nil)
	if err != nil {
		return nil, err
	}
	return &PostDetail{PostView: views[0], ViewerVote: vote, Comments: comments}, nil
}

// Dashboard returns the platform summary, served from cache when possible.
func (s *FeedService) Dashboard(ctx context.Context) (dash *Dashboard, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "dashboard")
	defer func() { observability.EndSpan(span, err) }()

	var d Dashboard
	err = s.cache.Aside(ctx, cache.DashboardKey, &d, s.dashboardTTL, func() error {
		built, buildErr := s.buildDashboard(ctx)
		if buildErr != nil {
			return buildErr
		}
		d = *built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *FeedService) buildDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: s.now().UTC()}
	var err error
	if d.TotalPosts, err = s.posts.CountActive(ctx); err != nil {
		return nil, err
	}
	if d.TotalComments, err = s.comments.CountActive(ctx); err != nil {
		return nil, err
	}
	if d.TotalUpvotes, err = s.reactions.CountActivePostVotes(ctx, models.ReactionUpvote); err != nil {
		return nil, err
	}
	if d.TotalDownvotes, err = s.reactions.CountActivePostVotes(ctx, models.ReactionDownvote); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	scored, err := s.score(ctx, posts)
	if err != nil {
		return nil, err
	}
	top, _ := s.ranker.Rank(scored, SortByPopularity, 1, dashboardTopN)
	bloggers := topBloggers(scored, dashboardTopN)

	authorIDs := make([]uint, 0, len(top)+len(bloggers))
	for _, sp := range top {
		authorIDs = append(authorIDs, sp.Post.CreatedBy)
	}
	for _, b := range bloggers {
		authorIDs = append(authorIDs, b.UserID)
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	d.TopPosts = make([]DashboardPost, len(top))
	for i, sp := range top {
		d.TopPosts[i] = DashboardPost{
			ID:         sp.Post.ID,
			Title:      sp.Post.Title,
			AuthorID:   sp.Post.CreatedBy,
			AuthorName: authors[sp.Post.CreatedBy].DisplayName(),
			Score:      sp.Score,
		}
	}
	for i := range bloggers {
		bloggers[i].Name = authors[bloggers[i].UserID].DisplayName()
	}
	d.TopBloggers = bloggers
	return d, nil
}

// topBloggers groups scored posts by author and keeps the n highest summed
// scores, ties by author id. Authors without active posts never appear.
func topBloggers(scored []ScoredPost, n int) []DashboardBlogger {
	byAuthor := make(map[uint][]ScoredPost)
	for _, sp := range scored {
		byAuthor[sp.Post.CreatedBy] = append(byAuthor[sp.Post.CreatedBy], sp)
	}
	out := make([]DashboardBlogger, 0, len(byAuthor))
	for id, posts := range byAuthor {
		out = append(out, DashboardBlogger{UserID: id, PostCount: len(posts), Score: BloggerScore(posts)})
	}
	slices.SortFunc(out, func(a, b DashboardBlogger) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
