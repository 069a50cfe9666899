package services

import (
	"errors"
	"fmt"

	"inpstories/internal/apperr"
	"inpstories/internal/models"
	"inpstories/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// parseID validates a client-supplied id and returns its canonical form.
func parseID(kind, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.Validation(fmt.Sprintf("invalid %s id", kind))
	}
	return id.String(), nil
}

func notFoundOr(err error, resource, id, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.Wrap(err, op)
}

func testimonialLikeIDs(likes []models.TestimonialLike, viewerID string) ([]string, bool) {
	ids := make([]string, len(likes))
	liked := false
	for i, l := range likes {
		ids[i] = l.UserID
		if viewerID != "" && l.UserID == viewerID {
			liked = true
		}
	}
	return ids, liked
}

func commentLikeIDs(likes []models.CommentLike, viewerID string) ([]string, bool) {
	ids := make([]string, len(likes))
	liked := false
	for i, l := range likes {
		ids[i] = l.UserID
		if viewerID != "" && l.UserID == viewerID {
			liked = true
		}
	}
	return ids, liked
}

func testimonialView(t *models.Testimonial, viewerID string) *models.TestimonialView {
	likes, liked := testimonialLikeIDs(t.Likes, viewerID)
	return &models.TestimonialView{
		ID:            t.ID,
		Author:        t.Author.Display(),
		Content:       t.Content,
		ContentHTML:   utils.RenderMarkdown(t.Content),
		Likes:         likes,
		LikesCount:    t.LikesCount,
		CommentsCount: t.CommentsCount,
		LikedByUser:   liked,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func commentNode(c *models.Comment, viewerID string) *models.CommentNode {
	likes, liked := commentLikeIDs(c.Likes, viewerID)
	return &models.CommentNode{
		ID:            c.ID,
		Author:        c.Author.Display(),
		TestimonialID: c.TestimonialID,
		ParentID:      c.ParentID,
		Content:       c.Content,
		ContentHTML:   utils.RenderMarkdown(c.Content),
		Likes:         likes,
		LikesCount:    c.LikesCount,
		RepliesCount:  c.RepliesCount,
		Depth:         c.Depth,
		LikedByUser:   liked,
		Replies:       []*models.CommentNode{},
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
