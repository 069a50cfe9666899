package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"inpstories/internal/auth"
	"inpstories/internal/db/dbtest"
	"inpstories/internal/models"
	"inpstories/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	testimonials *TestimonialService
	comments     *CommentService
	reconciler   *Reconciler
	auth         *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	cache, err := utils.NewCache(100)
	require.NoError(t, err)

	testimonials := NewTestimonialService(conn, cache)
	reconciler := NewReconciler(conn)
	return &fixture{
		db:           conn,
		testimonials: testimonials,
		comments:     NewCommentService(conn, testimonials, reconciler),
		reconciler:   reconciler,
		auth:         NewAuthService(conn, auth.NewJWTManager("test-secret", time.Hour)),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		Password:  "x",
		Promotion: "2024",
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) testimonial(t *testing.T, author *models.User) *models.TestimonialView {
	t.Helper()
	view, err := f.testimonials.Create(context.Background(), author.ID, "A testimonial long enough to pass.")
	require.NoError(t, err)
	return view
}

func (f *fixture) comment(t *testing.T, author *models.User, testimonialID, parentID, content string) *models.CommentNode {
	t.Helper()
	node, err := f.comments.Create(context.Background(), CreateCommentInput{
		AuthorID:        author.ID,
		TestimonialID:   testimonialID,
		ParentCommentID: parentID,
		Content:         content,
	})
	require.NoError(t, err)
	return node
}

func (f *fixture) reloadTestimonial(t *testing.T, id string) models.Testimonial {
	t.Helper()
	var out models.Testimonial
	require.NoError(t, f.db.First(&out, "id = ?", id).Error)
	return out
}

func (f *fixture) reloadComment(t *testing.T, id string) models.Comment {
	t.Helper()
	var out models.Comment
	require.NoError(t, f.db.First(&out, "id = ?", id).Error)
	return out
}

func (f *fixture) commentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&n).Error)
	return n
}
