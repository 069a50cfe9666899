package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"inpstories/internal/apperr"
	"inpstories/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateRootAndReply(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)

	root := f.comment(t, bob, tm.ID, "", "  nice story  ")
	assert.Equal(t, "nice story", root.Content)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, "Bob", root.Author.Name)
	assert.NotNil(t, root.Replies)

	reply := f.comment(t, alice, tm.ID, root.ID, "thank you")
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)
	assert.Equal(t, 1, reply.Depth)

	assert.Equal(t, 1, f.reloadComment(t, root.ID).RepliesCount)
	assert.Equal(t, 2, f.reloadTestimonial(t, tm.ID).CommentsCount)
}

func TestCommentCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	tm := f.testimonial(t, alice)
	other := f.testimonial(t, alice)
	foreign := f.comment(t, alice, other.ID, "", "on another testimonial")

	cases := []struct {
		name string
		in   CreateCommentInput
		want error
	}{
		{"blank content", CreateCommentInput{TestimonialID: tm.ID, Content: "   "}, apperr.ErrValidation},
		{"too long", CreateCommentInput{TestimonialID: tm.ID, Content: strings.Repeat("a", models.MaxCommentLength+1)}, apperr.ErrValidation},
		{"bad testimonial id", CreateCommentInput{TestimonialID: "42", Content: "hi"}, apperr.ErrValidation},
		{"missing testimonial", CreateCommentInput{TestimonialID: uuid.NewString(), Content: "hi"}, apperr.ErrNotFound},
		{"bad parent id", CreateCommentInput{TestimonialID: tm.ID, ParentCommentID: "x", Content: "hi"}, apperr.ErrValidation},
		{"missing parent", CreateCommentInput{TestimonialID: tm.ID, ParentCommentID: uuid.NewString(), Content: "hi"}, apperr.ErrNotFound},
		{"parent on other testimonial", CreateCommentInput{TestimonialID: tm.ID, ParentCommentID: foreign.ID, Content: "hi"}, apperr.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.AuthorID = alice.ID
			_, err := f.comments.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.comments.Create(ctx, CreateCommentInput{
		AuthorID:      alice.ID,
		TestimonialID: tm.ID,
		Content:       strings.Repeat("ü", models.MaxCommentLength),
	})
	assert.NoError(t, err)
}

func TestCommentMaxDepth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	tm := f.testimonial(t, alice)

	parent := f.comment(t, alice, tm.ID, "", "depth 0")
	for depth := 1; depth <= models.MaxCommentDepth; depth++ {
		parent = f.comment(t, alice, tm.ID, parent.ID, fmt.Sprintf("depth %d", depth))
		assert.Equal(t, depth, parent.Depth)
	}

	_, err := f.comments.Create(ctx, CreateCommentInput{
		AuthorID:        alice.ID,
		TestimonialID:   tm.ID,
		ParentCommentID: parent.ID,
		Content:         "one too deep",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMaxDepth)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "max depth reached")
	assert.EqualValues(t, models.MaxCommentDepth+1, f.commentCount(t))
}

func TestCommentListOrderingAndTruncation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)

	older := f.comment(t, alice, tm.ID, "", "older root")
	newer := f.comment(t, bob, tm.ID, "", "newer root")
	firstReply := f.comment(t, bob, tm.ID, older.ID, "first reply")
	secondReply := f.comment(t, alice, tm.ID, older.ID, "second reply")

	// chain under the first reply down to depth 7
	chain := []*models.CommentNode{firstReply}
	for depth := 2; depth <= 7; depth++ {
		chain = append(chain, f.comment(t, alice, tm.ID, chain[len(chain)-1].ID, fmt.Sprintf("depth %d", depth)))
	}

	_, err := f.comments.ToggleLike(ctx, secondReply.ID, bob.ID)
	require.NoError(t, err)

	list, err := f.comments.ListForTestimonial(ctx, tm.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, 2, list.Count)
	require.Len(t, list.Comments, 2)
	assert.Equal(t, newer.ID, list.Comments[0].ID)
	assert.Equal(t, older.ID, list.Comments[1].ID)
	assert.Empty(t, list.Comments[0].Replies)

	replies := list.Comments[1].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, firstReply.ID, replies[0].ID)
	assert.Equal(t, secondReply.ID, replies[1].ID)
	assert.True(t, replies[1].LikedByUser)
	assert.Equal(t, 1, replies[1].LikesCount)
	assert.False(t, replies[0].LikedByUser)

	node := replies[0]
	for depth := 1; depth < models.MaxReadDepth; depth++ {
		require.Len(t, node.Replies, 1, "depth %d", depth)
		node = node.Replies[0]
	}
	assert.Equal(t, models.MaxReadDepth, node.Depth)
	assert.Empty(t, node.Replies)
	assert.NotNil(t, node.Replies)
	assert.Equal(t, 1, node.RepliesCount)

	_, err = f.comments.ListForTestimonial(ctx, uuid.NewString(), "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommentDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)

	root := f.comment(t, alice, tm.ID, "", "root")
	target := f.comment(t, bob, tm.ID, root.ID, "target")
	child := f.comment(t, alice, tm.ID, target.ID, "child")
	grandchild := f.comment(t, alice, tm.ID, child.ID, "grandchild")
	sibling := f.comment(t, alice, tm.ID, root.ID, "sibling")
	_, err := f.comments.ToggleLike(ctx, grandchild.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.comments.Delete(ctx, alice.ID, target.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	res, err := f.comments.Delete(ctx, bob.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, res.ID)
	assert.Equal(t, tm.ID, res.TestimonialID)
	require.NotNil(t, res.ParentID)
	assert.Equal(t, root.ID, *res.ParentID)
	assert.Equal(t, []string{grandchild.ID, child.ID, target.ID}, res.DeletedIDs)

	assert.EqualValues(t, 2, f.commentCount(t))
	assert.Equal(t, 2, f.reloadTestimonial(t, tm.ID).CommentsCount)
	assert.Equal(t, 1, f.reloadComment(t, root.ID).RepliesCount)
	f.reloadComment(t, sibling.ID)

	var likes int64
	require.NoError(t, f.db.Model(&models.CommentLike{}).Count(&likes).Error)
	assert.Zero(t, likes)

	_, err = f.comments.Delete(ctx, bob.ID, target.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCommentToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	tm := f.testimonial(t, alice)
	c := f.comment(t, alice, tm.ID, "", "like me")

	res, err := f.comments.ToggleLike(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionLiked, res.Action)
	assert.Equal(t, 1, res.LikesCount)
	assert.Equal(t, tm.ID, res.TestimonialID)
	assert.Equal(t, c.ID, res.EntityID)

	res, err = f.comments.ToggleLike(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionUnliked, res.Action)
	assert.Equal(t, 0, res.LikesCount)
	assert.Equal(t, 0, f.reloadComment(t, c.ID).LikesCount)

	_, err = f.comments.ToggleLike(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
