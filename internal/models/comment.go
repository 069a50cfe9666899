package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MaxCommentDepth is the deepest reply level that may be stored.
	MaxCommentDepth = 10
	// MaxReadDepth bounds how many reply levels are assembled when listing.
	MaxReadDepth = 5

	MaxCommentLength     = 500
	MinTestimonialLength = 10
	MaxTestimonialLength = 1000
)

// Comment is stored flat: each row only knows its testimonial and immediate parent.
// Depth and content never change after creation.
type Comment struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID      string        `gorm:"type:uuid;not null;index" json:"authorId"`
	Author        User          `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	TestimonialID string        `gorm:"type:uuid;not null;index:idx_comment_thread,priority:1" json:"testimonialId"`
	ParentID      *string       `gorm:"type:uuid;index:idx_comment_thread,priority:2;index:idx_comment_parent" json:"parentCommentId"` // nil for root comments
	Content       string        `gorm:"type:text;not null" json:"content"`
	Likes         []CommentLike `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE;" json:"-"`
	LikesCount    int           `gorm:"not null;default:0" json:"likesCount"`
	RepliesCount  int           `gorm:"not null;default:0" json:"repliesCount"`
	Depth         int           `gorm:"not null;default:0" json:"depth"`
	CreatedAt     time.Time     `gorm:"index:idx_comment_thread,priority:3" json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

type CommentLike struct {
	CommentID string    `gorm:"type:uuid;primaryKey" json:"commentId"`
	UserID    string    `gorm:"type:uuid;primaryKey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
