package services

import (
	"context"
	"strings"
	"testing"

	"inpstories/internal/apperr"
	"inpstories/internal/models"
	"inpstories/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestimonialCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")

	view, err := f.testimonials.Create(ctx, alice.ID, "  INP changed my **career**.  ")
	require.NoError(t, err)
	assert.Equal(t, "INP changed my **career**.", view.Content)
	assert.Contains(t, string(view.ContentHTML), "<strong>career</strong>")
	assert.Equal(t, "Alice", view.Author.Name)
	assert.Equal(t, 0, view.LikesCount)
	assert.Empty(t, view.Likes)

	_, err = f.testimonials.Create(ctx, alice.ID, "too short")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.testimonials.Create(ctx, alice.ID, strings.Repeat("é", models.MaxTestimonialLength+1))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.testimonials.Create(ctx, alice.ID, strings.Repeat("é", models.MaxTestimonialLength))
	assert.NoError(t, err)
}

func TestTestimonialListSortSearchAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")

	first, err := f.testimonials.Create(ctx, alice.ID, "Great mentors and 100% hands-on projects")
	require.NoError(t, err)
	second, err := f.testimonials.Create(ctx, alice.ID, "The alumni network opened doors")
	require.NoError(t, err)
	third, err := f.testimonials.Create(ctx, bob.ID, "Mentors pushed me beyond my limits")
	require.NoError(t, err)

	_, err = f.testimonials.ToggleLike(ctx, second.ID, bob.ID)
	require.NoError(t, err)
	f.comment(t, bob, first.ID, "", "agreed")
	f.comment(t, alice, first.ID, "", "thanks")

	page, err := f.testimonials.List(ctx, ListQuery{}, bob.ID)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, third.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, DefaultPageLimit, page.Pagination.Limit)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)

	page, err = f.testimonials.List(ctx, ListQuery{Sort: SortPopular}, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.True(t, page.Items[0].LikedByUser)
	assert.Equal(t, []string{bob.ID}, page.Items[0].Likes)

	page, err = f.testimonials.List(ctx, ListQuery{Sort: SortCommented}, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Equal(t, 2, page.Items[0].CommentsCount)

	page, err = f.testimonials.List(ctx, ListQuery{Search: "MENTORS"}, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.testimonials.List(ctx, ListQuery{Search: "100%"}, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	page, err = f.testimonials.List(ctx, ListQuery{Page: 2, Limit: 2}, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Equal(t, 2, page.Pagination.Pages)

	page, err = f.testimonials.List(ctx, ListQuery{Limit: 1000}, "")
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, page.Pagination.Limit)
}

func TestTestimonialToggleLikeFlips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)

	res, err := f.testimonials.ToggleLike(ctx, tm.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionLiked, res.Action)
	assert.Equal(t, 1, res.LikesCount)
	assert.True(t, res.LikedByUser)
	assert.Equal(t, tm.ID, res.TestimonialID)

	res, err = f.testimonials.ToggleLike(ctx, tm.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikesCount)

	res, err = f.testimonials.ToggleLike(ctx, tm.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionUnliked, res.Action)
	assert.Equal(t, 1, res.LikesCount)
	assert.False(t, res.LikedByUser)

	assert.Equal(t, 1, f.reloadTestimonial(t, tm.ID).LikesCount)

	_, err = f.testimonials.ToggleLike(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.testimonials.ToggleLike(ctx, "not-a-uuid", bob.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTestimonialGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	tm := f.testimonial(t, alice)

	view, err := f.testimonials.Get(ctx, tm.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, tm.Content, view.Content)
	assert.False(t, view.LikedByUser)

	_, err = f.testimonials.Get(ctx, uuid.NewString(), "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTestimonialDeletePurgesThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)
	other := f.testimonial(t, bob)

	root := f.comment(t, bob, tm.ID, "", "root")
	reply := f.comment(t, alice, tm.ID, root.ID, "reply")
	kept := f.comment(t, alice, other.ID, "", "elsewhere")
	_, err := f.comments.ToggleLike(ctx, reply.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.comments.ToggleLike(ctx, kept.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.testimonials.ToggleLike(ctx, tm.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.testimonials.Delete(ctx, bob.ID, tm.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	id, err := f.testimonials.Delete(ctx, alice.ID, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, tm.ID, id)

	ok, err := f.testimonials.Exists(ctx, tm.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 1, f.commentCount(t))

	var likes int64
	require.NoError(t, f.db.Model(&models.CommentLike{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
	require.NoError(t, f.db.Model(&models.TestimonialLike{}).Count(&likes).Error)
	assert.EqualValues(t, 0, likes)

	_, err = f.testimonials.Delete(ctx, alice.ID, tm.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWritesIgnoreStaleExistsCacheAcrossInstances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)

	// a second instance on the same database with its own cache
	otherCache, err := utils.NewCache(100)
	require.NoError(t, err)
	other := NewTestimonialService(f.db, otherCache)
	otherComments := NewCommentService(f.db, other, f.reconciler)

	ok, err := other.Exists(ctx, tm.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.testimonials.Delete(ctx, alice.ID, tm.ID)
	require.NoError(t, err)

	_, err = otherComments.Create(ctx, CreateCommentInput{
		AuthorID:      bob.ID,
		TestimonialID: tm.ID,
		Content:       "too late",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.EqualValues(t, 0, f.commentCount(t))

	_, err = other.ToggleLike(ctx, tm.ID, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	var likes int64
	require.NoError(t, f.db.Model(&models.TestimonialLike{}).Count(&likes).Error)
	assert.EqualValues(t, 0, likes)

	ok, err = other.Exists(ctx, tm.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
