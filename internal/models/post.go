package models

// Post is a blog entry.
type Post struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	Title    string      `gorm:"size:255;not null" json:"title"`
	Body     string      `gorm:"type:text;not null" json:"body"`
	Mood     string      `gorm:"size:100" json:"mood"`
	Location string      `gorm:"size:255" json:"location"`
	Images   []PostImage `gorm:"foreignKey:PostID" json:"images,omitempty"`
	Lifecycle
}

// PostImage references an externally stored image of a post.
type PostImage struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	URL    string `gorm:"size:2048;not null" json:"url"`
	PostID uint   `gorm:"not null;index" json:"postId"`
}
