package handlers

import (
	"net/http"

	"inpstories/internal/middleware"
	"inpstories/internal/realtime"
	"inpstories/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	base
	comments *services.CommentService
	events   Broadcaster
}

func NewCommentHandler(comments *services.CommentService, events Broadcaster, verbose bool) *CommentHandler {
	return &CommentHandler{
		base:     newBase("comments-api", verbose),
		comments: comments,
		events:   events,
	}
}

type createCommentRequest struct {
	TestimonialID   string `json:"testimonialId"`
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	node, err := h.comments.Create(c.Request.Context(), services.CreateCommentInput{
		AuthorID:        middleware.CurrentUserID(c),
		TestimonialID:   req.TestimonialID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.EmitToTestimonial(node.TestimonialID, realtime.EventCommentCreated, node)
	respond(c, http.StatusCreated, node)
}

func (h *CommentHandler) ListForTestimonial(c *gin.Context) {
	list, err := h.comments.ListForTestimonial(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: list.Comments, Count: &list.Count})
}

func (h *CommentHandler) ToggleLike(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	res, err := h.comments.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.EmitToTestimonial(res.TestimonialID, realtime.EventCommentLikeUpdate, realtime.CommentLikeUpdate{
		CommentID:     res.EntityID,
		TestimonialID: res.TestimonialID,
		UserID:        userID,
		Action:        res.Action,
		LikesCount:    res.LikesCount,
		LikedByUser:   res.LikedByUser,
	})
	respond(c, http.StatusOK, res)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	deleted, err := h.comments.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.EmitToTestimonial(deleted.TestimonialID, realtime.EventCommentDeleted, deleted)
	c.JSON(http.StatusOK, Response{Success: true, Message: "comment deleted", Data: deleted})
}
