package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"inpstories/internal/apperr"
	"inpstories/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey = "user"
	authErrorKey = "auth_error"
)

type TokenValidator interface {
	Validate(token string) (string, error)
}

type UserFinder interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
}

// BearerToken reads the Authorization header, falling back to the token query
// parameter used by websocket clients.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// LoadUser resolves the optional bearer token and stores the user in the context.
// Requests without a valid token continue anonymously.
func LoadUser(tokens TokenValidator, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			c.Set(authErrorKey, "invalid or expired token")
			c.Next()
			return
		}

		user, err := users.FindUser(c.Request.Context(), userID)
		if errors.Is(err, apperr.ErrNotFound) {
			c.Set(authErrorKey, "user no longer exists")
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
				"success": false,
				"message": apperr.PublicMessage(err, false),
			})
			return
		}

		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// AuthRequired rejects requests that LoadUser could not attach a user to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		message := "authentication required"
		if reason := c.GetString(authErrorKey); reason != "" {
			message = reason
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentUserID is empty for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return ""
}
