package models

import (
	"fmt"
	"time"
)

// User is the local projection of an externally issued identity.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	FullName  string    `gorm:"size:255" json:"fullName"`
	Email     *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	MobileNo  string    `gorm:"size:32" json:"mobileNo"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaceholderUsername names an account created from a token before the user
// filled in any profile details.
func PlaceholderUsername(id uint) string {
	return fmt.Sprintf("user-%d", id)
}

// DisplayName prefers the full name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
