package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Avatar    string    `json:"avatar"`
	Promotion string    `gorm:"size:100;not null" json:"promotion"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Display returns the public attributes shown next to authored content.
func (u User) Display() AuthorView {
	return AuthorView{
		ID:        u.ID,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Promotion: u.Promotion,
		Verified:  u.Verified,
	}
}
