package handlers

import (
	"net/http"

	"inpstories/internal/middleware"
	"inpstories/internal/realtime"
	"inpstories/internal/services"
	"inpstories/internal/utils"

	"github.com/gin-gonic/gin"
)

type TestimonialHandler struct {
	base
	testimonials *services.TestimonialService
	events       Broadcaster
}

func NewTestimonialHandler(testimonials *services.TestimonialService, events Broadcaster, verbose bool) *TestimonialHandler {
	return &TestimonialHandler{
		base:         newBase("testimonials-api", verbose),
		testimonials: testimonials,
		events:       events,
	}
}

type createTestimonialRequest struct {
	Content string `json:"content"`
}

func (h *TestimonialHandler) Create(c *gin.Context) {
	var req createTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	view, err := h.testimonials.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.Broadcast(realtime.EventTestimonialCreated, view)
	respond(c, http.StatusCreated, view)
}

func (h *TestimonialHandler) List(c *gin.Context) {
	result, err := h.testimonials.List(c.Request.Context(), services.ListQuery{
		Sort:   c.Query("sort"),
		Search: c.Query("search"),
		Page:   utils.QueryInt(c.Query("page"), 1),
		Limit:  utils.QueryInt(c.Query("limit"), services.DefaultPageLimit),
	}, middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result.Items, Pagination: &result.Pagination})
}

func (h *TestimonialHandler) Get(c *gin.Context) {
	view, err := h.testimonials.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *TestimonialHandler) ToggleLike(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	res, err := h.testimonials.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.EmitToTestimonial(res.TestimonialID, realtime.EventTestimonialLikeUpdate, realtime.TestimonialLikeUpdate{
		TestimonialID: res.TestimonialID,
		UserID:        userID,
		Action:        res.Action,
		LikesCount:    res.LikesCount,
		LikedByUser:   res.LikedByUser,
	})
	respond(c, http.StatusOK, res)
}

func (h *TestimonialHandler) Delete(c *gin.Context) {
	id, err := h.testimonials.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.events.Broadcast(realtime.EventTestimonialDeleted, realtime.TestimonialDeleted{TestimonialID: id})
	c.JSON(http.StatusOK, Response{Success: true, Message: "testimonial deleted"})
}
