package database

import "inkwell/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Reaction{},
		&models.PostRevision{},
		&models.CommentRevision{},
		&models.Notification{},
	}
}
