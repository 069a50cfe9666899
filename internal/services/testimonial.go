package services

import (
	"context"
	"fmt"
	"time"

	"inpstories/internal/apperr"
	"inpstories/internal/logger"
	"inpstories/internal/models"
	"inpstories/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	SortRecent    = "recent"
	SortPopular   = "popular"
	SortCommented = "commented"

	DefaultPageLimit = 10
	MaxPageLimit     = 100

	existsTTL = time.Minute
)

var sortOrders = map[string]string{
	SortRecent:    "created_at DESC",
	SortPopular:   "likes_count DESC, created_at DESC",
	SortCommented: "comments_count DESC, created_at DESC",
}

type ListQuery struct {
	Sort   string
	Search string
	Page   int
	Limit  int
}

func (q *ListQuery) normalize() {
	if _, ok := sortOrders[q.Sort]; !ok {
		q.Sort = SortRecent
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

type TestimonialService struct {
	db    *gorm.DB
	cache *utils.Cache
	log   zerolog.Logger
}

func NewTestimonialService(conn *gorm.DB, cache *utils.Cache) *TestimonialService {
	return &TestimonialService{
		db:    conn,
		cache: cache,
		log:   logger.WithComponent("testimonials"),
	}
}

func existsKey(id string) string {
	return "testimonial:exists:" + id
}

// Exists reports whether a testimonial is stored. Positive answers are cached
// briefly, so it may lag a delete made by another instance; writes use Confirm.
func (s *TestimonialService) Exists(ctx context.Context, id string) (bool, error) {
	if s.cache != nil && s.cache.Get(existsKey(id)) != nil {
		return true, nil
	}
	return s.Confirm(ctx, id)
}

// Confirm checks the store directly and refreshes the cached answer.
func (s *TestimonialService) Confirm(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Testimonial{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "check testimonial")
	}
	if s.cache != nil {
		if n > 0 {
			s.cache.Set(existsKey(id), true, existsTTL)
		} else {
			s.cache.Delete(existsKey(id))
		}
	}
	return n > 0, nil
}

func (s *TestimonialService) Create(ctx context.Context, authorID, content string) (*models.TestimonialView, error) {
	text, n := utils.NormalizeContent(content)
	if n < models.MinTestimonialLength || n > models.MaxTestimonialLength {
		return nil, apperr.Validation(fmt.Sprintf("testimonial must be between %d and %d characters",
			models.MinTestimonialLength, models.MaxTestimonialLength))
	}

	t := models.Testimonial{AuthorID: authorID, Content: text}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, apperr.Wrap(err, "create testimonial")
	}
	if err := s.db.WithContext(ctx).Preload("Author").First(&t, "id = ?", t.ID).Error; err != nil {
		return nil, apperr.Wrap(err, "load testimonial")
	}
	if s.cache != nil {
		s.cache.Set(existsKey(t.ID), true, existsTTL)
	}

	s.log.Info().Str("testimonial_id", t.ID).Str("author_id", authorID).Msg("testimonial created")
	return testimonialView(&t, authorID), nil
}

func (s *TestimonialService) List(ctx context.Context, q ListQuery, viewerID string) (*models.TestimonialPage, error) {
	q.normalize()

	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Testimonial{})
		if q.Search != "" {
			tx = tx.Where("LOWER(content) LIKE ? ESCAPE '\\'", utils.LikePattern(q.Search))
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, apperr.Wrap(err, "count testimonials")
	}

	var rows []models.Testimonial
	err := scope().
		Preload("Author").
		Preload("Likes").
		Order(sortOrders[q.Sort]).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list testimonials")
	}

	items := make([]*models.TestimonialView, len(rows))
	for i := range rows {
		items[i] = testimonialView(&rows[i], viewerID)
	}

	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &models.TestimonialPage{
		Items: items,
		Pagination: models.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (s *TestimonialService) Get(ctx context.Context, id, viewerID string) (*models.TestimonialView, error) {
	tid, err := parseID("testimonial", id)
	if err != nil {
		return nil, err
	}

	var t models.Testimonial
	if err := s.db.WithContext(ctx).Preload("Author").Preload("Likes").First(&t, "id = ?", tid).Error; err != nil {
		return nil, notFoundOr(err, "testimonial", tid, "load testimonial")
	}
	return testimonialView(&t, viewerID), nil
}

func (s *TestimonialService) ToggleLike(ctx context.Context, id, userID string) (*models.LikeResult, error) {
	tid, err := parseID("testimonial", id)
	if err != nil {
		return nil, err
	}

	ok, err := s.Confirm(ctx, tid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("testimonial", tid)
	}

	res, err := toggleLike(ctx, s.db, testimonialLikes, tid, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "toggle testimonial like")
	}
	res.TestimonialID = tid
	return res, nil
}

// Delete removes a testimonial together with its comment thread and every like
// attached to either, in one transaction. Only the author may delete.
func (s *TestimonialService) Delete(ctx context.Context, requesterID, id string) (string, error) {
	tid, err := parseID("testimonial", id)
	if err != nil {
		return "", err
	}

	var t models.Testimonial
	if err := s.db.WithContext(ctx).Select("id", "author_id").First(&t, "id = ?", tid).Error; err != nil {
		return "", notFoundOr(err, "testimonial", tid, "load testimonial")
	}
	if t.AuthorID != requesterID {
		return "", apperr.Forbidden("only the author can delete this testimonial")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		threadIDs := tx.Model(&models.Comment{}).Select("id").Where("testimonial_id = ?", tid)
		if err := tx.Where("comment_id IN (?)", threadIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("testimonial_id = ?", tid).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("testimonial_id = ?", tid).Delete(&models.TestimonialLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", tid).Delete(&models.Testimonial{}).Error
	})
	if err != nil {
		return "", apperr.Wrap(err, "delete testimonial")
	}

	if s.cache != nil {
		s.cache.Delete(existsKey(tid))
	}
	s.log.Info().Str("testimonial_id", tid).Msg("testimonial deleted")
	return tid, nil
}
