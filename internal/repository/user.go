package repository

import (
	"context"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// EnsureUser returns the user with id, inserting a placeholder row the
	// first time a token for that id is seen.
	EnsureUser(ctx context.Context, id uint, now time.Time) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, fullName, mobileNo string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
	IsAdmin(ctx context.Context, id uint) (bool, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapLookup(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	out := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if IsUniqueViolation(err) {
		return models.NewValidationError("username or email already taken")
	}
	return wrapWrite(err)
}

func (r *userRepository) EnsureUser(ctx context.Context, id uint, now time.Time) (*models.User, error) {
	placeholder := &models.User{ID: id, Username: models.PlaceholderUsername(id), CreatedAt: now}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(placeholder)
	if res.Error != nil {
		return nil, wrapWrite(res.Error)
	}
	if res.RowsAffected > 0 && r.db.Dialector.Name() == "postgres" {
		// Explicit ids bypass the serial sequence; move it past them.
		err := r.db.WithContext(ctx).
			Exec("SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))").Error
		if err != nil {
			return nil, wrapWrite(err)
		}
	}
	user, err := r.GetByID(ctx, id)
	if models.HasCode(err, models.CodeNotFound) {
		// The insert was skipped because another row owns the placeholder name.
		return nil, models.NewIntegrityError("username " + placeholder.Username + " is taken by another account")
	}
	return user, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, fullName, mobileNo string) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"full_name": fullName, "mobile_no": mobileNo})
	if res.Error != nil {
		return nil, wrapWrite(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) IsAdmin(ctx context.Context, id uint) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// DeleteCascade hard-deletes a user together with their posts, comments,
// reactions, revisions and notifications, and everything hanging off
// their posts. It runs in one transaction.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return wrapLookup(err, "User", id)
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("created_by = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("created_by = ? OR post_id IN ?", id, postIDs).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		steps := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&models.Reaction{}, "created_by = ? OR post_id IN ? OR comment_id IN ?", []interface{}{id, postIDs, commentIDs}},
			{&models.CommentRevision{}, "comment_id IN ?", []interface{}{commentIDs}},
			{&models.PostRevision{}, "post_id IN ?", []interface{}{postIDs}},
			{&models.Comment{}, "id IN ?", []interface{}{commentIDs}},
			{&models.PostImage{}, "post_id IN ?", []interface{}{postIDs}},
			{&models.Post{}, "id IN ?", []interface{}{postIDs}},
			{&models.Notification{}, "recipient_id = ? OR actor_id = ?", []interface{}{id, id}},
		}
		for _, s := range steps {
			if err := tx.Where(s.query, s.args...).Delete(s.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	return wrapWrite(err)
}
