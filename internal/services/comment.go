package services

import (
	"context"
	"fmt"

	"inpstories/internal/apperr"
	"inpstories/internal/logger"
	"inpstories/internal/models"
	"inpstories/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TestimonialChecker answers existence questions. Exists may serve a cached
// answer; Confirm always consults the store.
type TestimonialChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
	Confirm(ctx context.Context, id string) (bool, error)
}

// RecountScheduler accepts testimonials whose counters could not be refreshed inline.
type RecountScheduler interface {
	Schedule(testimonialID string)
}

type CreateCommentInput struct {
	AuthorID        string
	TestimonialID   string
	ParentCommentID string // empty for a root comment
	Content         string
}

// CommentService owns the comment tree: creation with depth limits, cascading
// delete, bounded tree assembly and like toggles.
type CommentService struct {
	db           *gorm.DB
	testimonials TestimonialChecker
	recounts     RecountScheduler
	log          zerolog.Logger
}

func NewCommentService(conn *gorm.DB, testimonials TestimonialChecker, recounts RecountScheduler) *CommentService {
	return &CommentService{
		db:           conn,
		testimonials: testimonials,
		recounts:     recounts,
		log:          logger.WithComponent("comments"),
	}
}

func (s *CommentService) requireTestimonial(ctx context.Context, raw string, write bool) (string, error) {
	tid, err := parseID("testimonial", raw)
	if err != nil {
		return "", err
	}
	check := s.testimonials.Exists
	if write {
		check = s.testimonials.Confirm
	}
	ok, err := check(ctx, tid)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.NotFound("testimonial", tid)
	}
	return tid, nil
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.CommentNode, error) {
	content, n := utils.NormalizeContent(in.Content)
	if n == 0 {
		return nil, apperr.Validation("comment content is required")
	}
	if n > models.MaxCommentLength {
		return nil, apperr.Validation(fmt.Sprintf("comment cannot exceed %d characters", models.MaxCommentLength))
	}

	tid, err := s.requireTestimonial(ctx, in.TestimonialID, true)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		AuthorID:      in.AuthorID,
		TestimonialID: tid,
		Content:       content,
	}

	if in.ParentCommentID != "" {
		pid, err := parseID("parent comment", in.ParentCommentID)
		if err != nil {
			return nil, err
		}

		var parent models.Comment
		if err := s.db.WithContext(ctx).Select("id", "testimonial_id", "depth").First(&parent, "id = ?", pid).Error; err != nil {
			return nil, notFoundOr(err, "parent comment", pid, "load parent comment")
		}
		if parent.TestimonialID != tid {
			return nil, apperr.Validation("parent comment belongs to a different testimonial")
		}
		if parent.Depth+1 > models.MaxCommentDepth {
			return nil, apperr.MaxDepth(models.MaxCommentDepth)
		}

		comment.ParentID = &parent.ID
		comment.Depth = parent.Depth + 1
	}

	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, apperr.Wrap(err, "create comment")
	}
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, apperr.Wrap(err, "load comment")
	}

	s.refreshCounters(ctx, tid, comment.ParentID)

	s.log.Debug().
		Str("comment_id", comment.ID).
		Str("testimonial_id", tid).
		Int("depth", comment.Depth).
		Msg("comment created")
	return commentNode(&comment, in.AuthorID), nil
}

// Delete removes a comment and all of its descendants. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, requesterID, commentID string) (*models.DeletedComment, error) {
	id, err := parseID("comment", commentID)
	if err != nil {
		return nil, err
	}

	var target models.Comment
	if err := s.db.WithContext(ctx).First(&target, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "comment", id, "load comment")
	}
	if target.AuthorID != requesterID {
		return nil, apperr.Forbidden("only the author can delete this comment")
	}

	var deleted []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSubtree(tx, target.ID, &deleted)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "delete comment")
	}

	s.refreshCounters(ctx, target.TestimonialID, target.ParentID)

	s.log.Info().
		Str("comment_id", id).
		Int("removed", len(deleted)).
		Msg("comment deleted")
	return &models.DeletedComment{
		ID:            id,
		TestimonialID: target.TestimonialID,
		ParentID:      target.ParentID,
		DeletedIDs:    deleted,
	}, nil
}

// deleteSubtree removes id after all of its replies, oldest reply first.
func deleteSubtree(tx *gorm.DB, id string, deleted *[]string) error {
	var children []string
	if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).Order("created_at ASC").Pluck("id", &children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteSubtree(tx, child, deleted); err != nil {
			return err
		}
	}

	if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
		return err
	}
	if err := tx.Where("id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	*deleted = append(*deleted, id)
	return nil
}

// refreshCounters recomputes the counters touched by a create or delete. Failures
// do not fail the request; the testimonial is handed to the reconciler instead.
func (s *CommentService) refreshCounters(ctx context.Context, testimonialID string, parentID *string) {
	tx := s.db.WithContext(ctx)
	err := countComments(tx, testimonialID)
	if err == nil && parentID != nil {
		err = countReplies(tx, *parentID)
	}
	if err == nil {
		return
	}

	s.log.Warn().Err(err).Str("testimonial_id", testimonialID).Msg("counter refresh failed, scheduling recount")
	if s.recounts != nil {
		s.recounts.Schedule(testimonialID)
	}
}

// ListForTestimonial returns root comments newest first, each with replies
// attached oldest first down to MaxReadDepth levels below the root.
func (s *CommentService) ListForTestimonial(ctx context.Context, testimonialID, viewerID string) (*models.CommentList, error) {
	tid, err := s.requireTestimonial(ctx, testimonialID, false)
	if err != nil {
		return nil, err
	}

	var roots []models.Comment
	err = s.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("testimonial_id = ? AND parent_id IS NULL", tid).
		Order("created_at DESC").
		Find(&roots).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list comments")
	}

	nodes := make([]*models.CommentNode, len(roots))
	for i := range roots {
		nodes[i] = commentNode(&roots[i], viewerID)
	}

	frontier := nodes
	for level := 0; level < models.MaxReadDepth && len(frontier) > 0; level++ {
		if frontier, err = s.attachReplies(ctx, frontier, viewerID); err != nil {
			return nil, err
		}
	}

	return &models.CommentList{Comments: nodes, Count: len(nodes)}, nil
}

// attachReplies loads the direct replies of every node in frontier in one query
// and returns them as the next level.
func (s *CommentService) attachReplies(ctx context.Context, frontier []*models.CommentNode, viewerID string) ([]*models.CommentNode, error) {
	byID := make(map[string]*models.CommentNode, len(frontier))
	ids := make([]string, len(frontier))
	for i, node := range frontier {
		ids[i] = node.ID
		byID[node.ID] = node
	}

	var replies []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("parent_id IN ?", ids).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list replies")
	}

	next := make([]*models.CommentNode, 0, len(replies))
	for i := range replies {
		parent, ok := byID[*replies[i].ParentID]
		if !ok {
			continue
		}
		node := commentNode(&replies[i], viewerID)
		parent.Replies = append(parent.Replies, node)
		next = append(next, node)
	}
	return next, nil
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	id, err := parseID("comment", commentID)
	if err != nil {
		return nil, err
	}

	var c models.Comment
	if err := s.db.WithContext(ctx).Select("id", "testimonial_id").First(&c, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "comment", id, "load comment")
	}

	res, err := toggleLike(ctx, s.db, commentLikes, id, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "toggle comment like")
	}
	res.TestimonialID = c.TestimonialID
	return res, nil
}
