package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	getActiveByIDFn      func(context.Context, uint) (*models.Post, error)
	listActiveFn         func(context.Context) ([]*models.Post, error)
	listActiveByAuthorFn func(context.Context, uint) ([]*models.Post, error)
	listImagesFn         func(context.Context, []uint) (map[uint][]models.PostImage, error)
	updateFn             func(context.Context, *models.Post) error
	softDeleteFn         func(context.Context, uint, uint, time.Time) error
	countActiveFn        func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getActiveByIDFn(ctx, id)
}
func (s *postRepoStub) ListActive(ctx context.Context) ([]*models.Post, error) {
	return s.listActiveFn(ctx)
}
func (s *postRepoStub) ListActiveByAuthor(ctx context.Context, id uint) ([]*models.Post, error) {
	return s.listActiveByAuthorFn(ctx, id)
}
func (s *postRepoStub) ListImages(ctx context.Context, ids []uint) (map[uint][]models.PostImage, error) {
	return s.listImagesFn(ctx, ids)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post) error { return s.updateFn(ctx, p) }
func (s *postRepoStub) SoftDelete(ctx context.Context, id, by uint, at time.Time) error {
	return s.softDeleteFn(ctx, id, by, at)
}
func (s *postRepoStub) CountActive(ctx context.Context) (int64, error) { return s.countActiveFn(ctx) }

func activePost(id, authorID uint) *models.Post {
	return &models.Post{ID: id, Title: "title", Body: "body", Lifecycle: models.NewLifecycle(authorID, time.Now())}
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:             func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.Post, error) { return activePost(id, 1), nil },
		getActiveByIDFn:      func(_ context.Context, id uint) (*models.Post, error) { return activePost(id, 1), nil },
		listActiveFn:         func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listActiveByAuthorFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listImagesFn: func(_ context.Context, _ []uint) (map[uint][]models.PostImage, error) {
			return map[uint][]models.PostImage{}, nil
		},
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		softDeleteFn:  func(_ context.Context, _, _ uint, _ time.Time) error { return nil },
		countActiveFn: func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn             func(context.Context, *models.Comment) error
	getByIDFn            func(context.Context, uint) (*models.Comment, error)
	getActiveByIDFn      func(context.Context, uint) (*models.Comment, error)
	listActiveTopLevelFn func(context.Context, uint) ([]*models.Comment, error)
	listActiveRepliesFn  func(context.Context, []uint) ([]*models.Comment, error)
	listActiveByPostFn   func(context.Context, uint) ([]*models.Comment, error)
	updateTextFn         func(context.Context, *models.Comment) error
	softDeleteFn         func(context.Context, uint, uint, time.Time) error
	countActiveFn        func(context.Context) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetActiveByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getActiveByIDFn(ctx, id)
}
func (s *commentRepoStub) ListActiveTopLevel(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listActiveTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) ListActiveReplies(ctx context.Context, ids []uint) ([]*models.Comment, error) {
	return s.listActiveRepliesFn(ctx, ids)
}
func (s *commentRepoStub) ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listActiveByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateText(ctx context.Context, c *models.Comment) error {
	return s.updateTextFn(ctx, c)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id, by uint, at time.Time) error {
	return s.softDeleteFn(ctx, id, by, at)
}
func (s *commentRepoStub) CountActive(ctx context.Context) (int64, error) {
	return s.countActiveFn(ctx)
}

func activeComment(id, postID, authorID uint) *models.Comment {
	pid := postID
	return &models.Comment{ID: id, Text: "text", TargetIsPost: true, PostID: &pid, Lifecycle: models.NewLifecycle(authorID, time.Now())}
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:             func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.Comment, error) { return activeComment(id, 1, 1), nil },
		getActiveByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return activeComment(id, 1, 1), nil },
		listActiveTopLevelFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		listActiveRepliesFn:  func(_ context.Context, _ []uint) ([]*models.Comment, error) { return nil, nil },
		listActiveByPostFn:   func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateTextFn:         func(_ context.Context, _ *models.Comment) error { return nil },
		softDeleteFn:         func(_ context.Context, _, _ uint, _ time.Time) error { return nil },
		countActiveFn:        func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	replaceVoteFn            func(context.Context, *models.Reaction) (int64, error)
	deactivateAllOnTargetFn  func(context.Context, models.Target) (int64, error)
	countActiveForCommentFn  func(context.Context, uint) (int64, error)
	countActiveForCommentsFn func(context.Context, []uint) (map[uint]int64, error)
	viewerVoteFn             func(context.Context, models.Target, uint) (models.ReactionKind, error)
	countActivePostVotesFn   func(context.Context, models.ReactionKind) (int64, error)
}

func (s *reactionRepoStub) ReplaceVote(ctx context.Context, r *models.Reaction) (int64, error) {
	return s.replaceVoteFn(ctx, r)
}
func (s *reactionRepoStub) DeactivateAllOnTarget(ctx context.Context, t models.Target) (int64, error) {
	return s.deactivateAllOnTargetFn(ctx, t)
}
func (s *reactionRepoStub) CountActiveForComment(ctx context.Context, id uint) (int64, error) {
	return s.countActiveForCommentFn(ctx, id)
}
func (s *reactionRepoStub) CountActiveForComments(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countActiveForCommentsFn(ctx, ids)
}
func (s *reactionRepoStub) ViewerVote(ctx context.Context, t models.Target, userID uint) (models.ReactionKind, error) {
	return s.viewerVoteFn(ctx, t, userID)
}
func (s *reactionRepoStub) CountActivePostVotes(ctx context.Context, k models.ReactionKind) (int64, error) {
	return s.countActivePostVotesFn(ctx, k)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		replaceVoteFn:           func(_ context.Context, _ *models.Reaction) (int64, error) { return 0, nil },
		deactivateAllOnTargetFn: func(_ context.Context, _ models.Target) (int64, error) { return 0, nil },
		countActiveForCommentFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countActiveForCommentsFn: func(_ context.Context, _ []uint) (map[uint]int64, error) {
			return map[uint]int64{}, nil
		},
		viewerVoteFn:           func(_ context.Context, _ models.Target, _ uint) (models.ReactionKind, error) { return 0, nil },
		countActivePostVotesFn: func(_ context.Context, _ models.ReactionKind) (int64, error) { return 0, nil },
	}
}

// revisionRepoStub is a stub for repository.RevisionRepository.
type revisionRepoStub struct {
	createPostRevisionFn    func(context.Context, *models.PostRevision) error
	createCommentRevisionFn func(context.Context, *models.CommentRevision) error
	listPostRevisionsFn     func(context.Context, uint) ([]*models.PostRevision, error)
	listCommentRevisionsFn  func(context.Context, uint) ([]*models.CommentRevision, error)
}

func (s *revisionRepoStub) CreatePostRevision(ctx context.Context, r *models.PostRevision) error {
	return s.createPostRevisionFn(ctx, r)
}
func (s *revisionRepoStub) CreateCommentRevision(ctx context.Context, r *models.CommentRevision) error {
	return s.createCommentRevisionFn(ctx, r)
}
func (s *revisionRepoStub) ListPostRevisions(ctx context.Context, id uint) ([]*models.PostRevision, error) {
	return s.listPostRevisionsFn(ctx, id)
}
func (s *revisionRepoStub) ListCommentRevisions(ctx context.Context, id uint) ([]*models.CommentRevision, error) {
	return s.listCommentRevisionsFn(ctx, id)
}

func noopRevisionRepo() *revisionRepoStub {
	return &revisionRepoStub{
		createPostRevisionFn:    func(_ context.Context, _ *models.PostRevision) error { return nil },
		createCommentRevisionFn: func(_ context.Context, _ *models.CommentRevision) error { return nil },
		listPostRevisionsFn:     func(_ context.Context, _ uint) ([]*models.PostRevision, error) { return nil, nil },
		listCommentRevisionsFn:  func(_ context.Context, _ uint) ([]*models.CommentRevision, error) { return nil, nil },
	}
}

// recordingObserver captures engagement events.
type recordingObserver struct {
	votes    []*models.Reaction
	owners   []uint
	comments []*models.Comment
	changes  int
}

func (o *recordingObserver) VoteCast(_ context.Context, r *models.Reaction, ownerID uint) {
	o.votes = append(o.votes, r)
	o.owners = append(o.owners, ownerID)
}

func (o *recordingObserver) CommentAdded(_ context.Context, c *models.Comment, ownerID uint) {
	o.comments = append(o.comments, c)
	o.owners = append(o.owners, ownerID)
}

func (o *recordingObserver) ContentChanged(_ context.Context) { o.changes++ }

func adminIs(adminID uint) func(context.Context, uint) (bool, error) {
	return func(_ context.Context, id uint) (bool, error) { return id == adminID, nil }
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeUnauthorized)
}

var _ repository.PostRepository = (*postRepoStub)(nil)
