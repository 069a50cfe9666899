package handlers

import (
	"net/http"

	"inpstories/internal/middleware"
	"inpstories/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService, verbose bool) *AuthHandler {
	return &AuthHandler{base: newBase("auth-api", verbose), auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "email and password are required")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	respond(c, http.StatusOK, services.Profile(user))
}
