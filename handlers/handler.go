// Package handlers implements the HTTP endpoints on top of the store
// interfaces below.
package handlers

import (
	"context"
	"net/http"

	"metawall/imagehost"
	"metawall/models"
	"metawall/notify"
	"metawall/response"
	"metawall/store"
	"metawall/token"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, gender, photo string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.User, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Following(ctx context.Context, id primitive.ObjectID) (*models.FollowingView, error)
}

type PostStore interface {
	List(ctx context.Context, q store.PostQuery) ([]models.PostDetail, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PostDetail, error)
	LikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.PostDetail, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Create(ctx context.Context, p *models.Post) error
	Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error)
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
}

type SubscriptionStore interface {
	Save(ctx context.Context, sub *models.PushSubscription) error
}

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	Users         UserStore
	Posts         PostStore
	Comments      CommentStore
	Subscriptions SubscriptionStore

	Tokens     *token.Manager
	Images     imagehost.Uploader
	Notifier   notify.Notifier
	Hub        *notify.Hub
	VAPIDKey   string
	BcryptCost int
}

func (h *Handler) notify(ctx context.Context, userID primitive.ObjectID, ev notify.Event) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.Notify(ctx, userID.Hex(), ev)
}

// objectIDParam parses the named path parameter. On failure it has already
// written the 400 response.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.Error(c, response.BadRequest("路由資訊錯誤"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// sendToken writes the token envelope used by signup, signin and password
// updates.
func (h *Handler) sendToken(c *gin.Context, status int, user *models.User) {
	tok, err := h.Tokens.Issue(user.ID.Hex(), user.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(status, gin.H{
		"status": "success",
		"user": gin.H{
			"token": tok,
			"name":  user.Name,
			"_id":   user.ID,
		},
	})
}

// Health godoc
// @Summary  Liveness check
// @Tags     system
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
