package handlers

import (
	"net/http"

	"inpstories/internal/apperr"
	"inpstories/internal/logger"
	"inpstories/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Broadcaster publishes realtime events after successful mutations.
type Broadcaster interface {
	Broadcast(event string, payload any)
	EmitToTestimonial(testimonialID, event string, payload any)
}

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Count      *int               `json:"count,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// base carries what every handler needs to answer errors consistently.
type base struct {
	verbose bool
	log     zerolog.Logger
}

func newBase(component string, verbose bool) base {
	return base{verbose: verbose, log: logger.WithComponent(component)}
}

func (b base) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		b.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	_ = c.Error(err)
	c.JSON(status, Response{Success: false, Message: apperr.PublicMessage(err, b.verbose)})
}

func (b base) badRequest(c *gin.Context, message string) {
	b.fail(c, apperr.Validation(message))
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// NopBroadcaster discards events. It is used when realtime delivery is not wired.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(string, any)                 {}
func (NopBroadcaster) EmitToTestimonial(string, string, any) {}
