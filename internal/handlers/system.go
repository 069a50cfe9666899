package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inpstories/internal/db"
)

type SystemHandler struct {
	db *gorm.DB
}

func NewSystemHandler(conn *gorm.DB) *SystemHandler {
	return &SystemHandler{db: conn}
}

func (h *SystemHandler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "INP Stories API",
		"status":  "running",
	})
}

func (h *SystemHandler) Health(c *gin.Context) {
	if err := db.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
