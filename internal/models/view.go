package models

import (
	"html/template"
	"time"
)

// AuthorView is the subset of a User exposed alongside testimonials and comments.
type AuthorView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Promotion string `json:"promotion"`
	Verified  bool   `json:"verified"`
}

type TestimonialView struct {
	ID            string        `json:"id"`
	Author        AuthorView    `json:"author"`
	Content       string        `json:"content"`
	ContentHTML   template.HTML `json:"contentHtml"`
	Likes         []string      `json:"likes"`
	LikesCount    int           `json:"likesCount"`
	CommentsCount int           `json:"commentsCount"`
	LikedByUser   bool          `json:"likedByUser"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CommentNode is one node of an assembled reply tree. Replies is never nil so it
// always serializes as an array.
type CommentNode struct {
	ID            string         `json:"id"`
	Author        AuthorView     `json:"author"`
	TestimonialID string         `json:"testimonialId"`
	ParentID      *string        `json:"parentCommentId"`
	Content       string         `json:"content"`
	ContentHTML   template.HTML  `json:"contentHtml"`
	Likes         []string       `json:"likes"`
	LikesCount    int            `json:"likesCount"`
	RepliesCount  int            `json:"repliesCount"`
	Depth         int            `json:"depth"`
	LikedByUser   bool           `json:"likedByUser"`
	Replies       []*CommentNode `json:"replies"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type CommentList struct {
	Comments []*CommentNode `json:"comments"`
	Count    int            `json:"count"`
}

type LikeAction string

const (
	ActionLiked   LikeAction = "liked"
	ActionUnliked LikeAction = "unliked"
)

type LikeResult struct {
	Action      LikeAction `json:"action"`
	LikesCount  int        `json:"likesCount"`
	LikedByUser bool       `json:"likedByUser"`

	// Correlation fields for realtime fan-out, not part of the response body.
	EntityID      string `json:"-"`
	TestimonialID string `json:"-"`
}

// DeletedComment describes the outcome of a cascading comment delete.
type DeletedComment struct {
	ID            string   `json:"commentId"`
	TestimonialID string   `json:"testimonialId"`
	ParentID      *string  `json:"parentCommentId"`
	DeletedIDs    []string `json:"deletedIds"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type TestimonialPage struct {
	Items      []*TestimonialView
	Pagination Pagination
}

// AuthUser is returned by register and login.
type AuthUser struct {
	AuthorView
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
