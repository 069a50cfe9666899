package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Testimonial struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID      string            `gorm:"type:uuid;not null;index:idx_testimonial_author" json:"authorId"`
	Author        User              `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Content       string            `gorm:"type:text;not null" json:"content"`
	Likes         []TestimonialLike `gorm:"foreignKey:TestimonialID;constraint:OnDelete:CASCADE;" json:"-"`
	LikesCount    int               `gorm:"not null;default:0;index" json:"likesCount"`
	CommentsCount int               `gorm:"not null;default:0;index" json:"commentsCount"`
	CreatedAt     time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TestimonialLike is one member of a testimonial's like set.
type TestimonialLike struct {
	TestimonialID string    `gorm:"type:uuid;primaryKey" json:"testimonialId"`
	UserID        string    `gorm:"type:uuid;primaryKey;index" json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
}
