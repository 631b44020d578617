package middleware

import (
	"context"
	"net/http"
	"strings"

	"metawall/models"
	"metawall/response"
	"metawall/store"
	"metawall/token"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	userIDKey = "userId"
	userKey   = "user"
)

type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Auth verifies the bearer token and loads the caller. Handlers behind it
// can rely on CurrentUser being set.
func Auth(tokens *token.Manager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, response.Unauthorized("你尚未登入！"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			log.WithError(err).Debug("token validation failed")
			response.Error(c, response.Unauthorized("你尚未登入！"))
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Error(c, response.Unauthorized("你尚未登入！"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(c, response.Unauthorized("使用者不存在"))
			return
		}
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(userIDKey, id.Hex())
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by Auth.
func CurrentUser(c *gin.Context) *models.User {
	if u, ok := c.Get(userKey); ok {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID returns the caller's id, or the zero id outside Auth.
func CurrentUserID(c *gin.Context) primitive.ObjectID {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return primitive.NilObjectID
}
