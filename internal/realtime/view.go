package realtime

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"inpstories/internal/models"
)

// ThreadView is a client's copy of one testimonial's comment forest. It merges
// incoming events into the listed tree and supports optimistic likes.
type ThreadView struct {
	mu            sync.Mutex
	testimonialID string
	viewerID      string
	roots         []*models.CommentNode
	index         map[string]*models.CommentNode
}

func NewThreadView(testimonialID, viewerID string, list *models.CommentList) *ThreadView {
	v := &ThreadView{
		testimonialID: testimonialID,
		viewerID:      viewerID,
		index:         make(map[string]*models.CommentNode),
	}
	if list != nil {
		v.roots = list.Comments
	}
	var walk func([]*models.CommentNode)
	walk = func(nodes []*models.CommentNode) {
		for _, n := range nodes {
			v.index[n.ID] = n
			walk(n.Replies)
		}
	}
	walk(v.roots)
	return v
}

func (v *ThreadView) Roots() []*models.CommentNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.roots
}

func (v *ThreadView) Find(id string) *models.CommentNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index[id]
}

// Apply merges one server frame. Frames for other testimonials, unknown events
// and updates for comments outside the loaded tree are ignored.
func (v *ThreadView) Apply(f Frame) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch f.Event {
	case EventCommentCreated:
		var node models.CommentNode
		if err := json.Unmarshal(f.Data, &node); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		v.insert(&node)
	case EventCommentLikeUpdate:
		var upd CommentLikeUpdate
		if err := json.Unmarshal(f.Data, &upd); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		if upd.TestimonialID == v.testimonialID {
			v.applyLike(upd)
		}
	case EventCommentDeleted:
		var del models.DeletedComment
		if err := json.Unmarshal(f.Data, &del); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		if del.TestimonialID == v.testimonialID {
			v.remove(del.ID)
		}
	}
	return nil
}

func (v *ThreadView) insert(node *models.CommentNode) {
	if node.TestimonialID != v.testimonialID {
		return
	}
	if _, seen := v.index[node.ID]; seen {
		return
	}
	if node.Replies == nil {
		node.Replies = []*models.CommentNode{}
	}

	if node.ParentID == nil {
		v.roots = append([]*models.CommentNode{node}, v.roots...)
		v.index[node.ID] = node
		return
	}

	parent, ok := v.index[*node.ParentID]
	if !ok {
		return
	}
	parent.RepliesCount++
	if parent.Depth >= models.MaxReadDepth {
		// listings stop at this level
		return
	}
	parent.Replies = append(parent.Replies, node)
	v.index[node.ID] = node
}

func (v *ThreadView) applyLike(upd CommentLikeUpdate) {
	node, ok := v.index[upd.CommentID]
	if !ok {
		return
	}
	node.LikesCount = upd.LikesCount

	liked := upd.Action == models.ActionLiked
	i := slices.Index(node.Likes, upd.UserID)
	switch {
	case liked && i < 0:
		node.Likes = append(node.Likes, upd.UserID)
	case !liked && i >= 0:
		node.Likes = slices.Delete(node.Likes, i, i+1)
	}
	if upd.UserID == v.viewerID {
		node.LikedByUser = liked
	}
}

func (v *ThreadView) remove(id string) {
	node, ok := v.index[id]
	if !ok {
		return
	}

	var drop func(*models.CommentNode)
	drop = func(n *models.CommentNode) {
		delete(v.index, n.ID)
		for _, r := range n.Replies {
			drop(r)
		}
	}
	drop(node)

	if node.ParentID == nil {
		v.roots = slices.DeleteFunc(v.roots, func(n *models.CommentNode) bool { return n.ID == id })
		return
	}
	if parent, ok := v.index[*node.ParentID]; ok {
		parent.Replies = slices.DeleteFunc(parent.Replies, func(n *models.CommentNode) bool { return n.ID == id })
		if parent.RepliesCount > 0 {
			parent.RepliesCount--
		}
	}
}

// OptimisticLike flips the viewer's like on a comment before the server answers.
// Anonymous views cannot like. The returned func restores the previous state if the request fails.
func (v *ThreadView) OptimisticLike(commentID string) (rollback func(), ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	node, found := v.index[commentID]
	if !found || v.viewerID == "" {
		return func() {}, false
	}

	prevLiked, prevCount := node.LikedByUser, node.LikesCount
	prevLikes := slices.Clone(node.Likes)

	node.LikedByUser = !prevLiked
	if node.LikedByUser {
		node.LikesCount++
		node.Likes = append(node.Likes, v.viewerID)
	} else {
		node.LikesCount--
		node.Likes = slices.DeleteFunc(node.Likes, func(id string) bool { return id == v.viewerID })
	}

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		node.LikedByUser = prevLiked
		node.LikesCount = prevCount
		node.Likes = prevLikes
	}, true
}

// ConfirmLike replaces the optimistic values with the server's answer.
func (v *ThreadView) ConfirmLike(commentID string, res models.LikeResult) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.applyLike(CommentLikeUpdate{
		CommentID:  commentID,
		UserID:     v.viewerID,
		Action:     res.Action,
		LikesCount: res.LikesCount,
	})
}
