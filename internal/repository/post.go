package repository

import (
	"context"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Post, error)
	ListActive(ctx context.Context) ([]*models.Post, error)
	ListActiveByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	ListImages(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error)
	Update(ctx context.Context, post *models.Post) error
	SoftDelete(ctx context.Context, id, deleterID uint, at time.Time) error
	CountActive(ctx context.Context) (int64, error)
}

type postRepository struct {
	db   *gorm.DB
	read *gorm.DB
}

// NewPostRepository creates a post repository. read may be nil.
func NewPostRepository(db, read *gorm.DB) PostRepository {
	return &postRepository{db: db, read: read}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return wrapWrite(r.db.WithContext(ctx).Create(post).Error)
}

// GetByID loads a post regardless of its active flag.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, wrapLookup(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("is_active = ?", true).
		First(&post, id).Error
	if err != nil {
		return nil, wrapLookup(err, "Post", id)
	}
	return &post, nil
}

// ListActive returns every active post newest first. Ranking and paging
// happen above this layer because popularity needs aggregated counts.
func (r *postRepository) ListActive(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListActiveByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("is_active = ? AND created_by = ?", true, authorID).
		Order("created_at DESC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListImages(ctx context.Context, postIDs []uint) (map[uint][]models.PostImage, error) {
	out := make(map[uint][]models.PostImage, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var images []models.PostImage
	err := readDB(r.db, r.read).WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, img := range images {
		out[img.PostID] = append(out[img.PostID], img)
	}
	return out, nil
}

// Update writes the editable fields and modification metadata.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Where("is_active = ?", true).
		Select("title", "body", "mood", "location", "last_modified_by", "last_modified_at").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id, deleterID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deleterID,
			"deleted_at": at,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := readDB(r.db, r.read).WithContext(ctx).Model(&models.Post{}).Where("is_active = ?", true).Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
