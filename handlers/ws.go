package handlers

import (
	"net/http"

	"metawall/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifications upgrades to a websocket that streams activity events for
// the user named by the ?token= query parameter. Browsers cannot set
// headers on websocket requests, hence the query parameter.
func (h *Handler) Notifications(c *gin.Context) {
	if h.Hub == nil {
		response.Error(c, response.New(http.StatusServiceUnavailable, "通知服務尚未啟用"))
		return
	}

	claims, err := h.Tokens.Parse(c.Query("token"))
	if err != nil {
		response.Error(c, response.Unauthorized("你尚未登入！"))
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		response.Error(c, response.Unauthorized("你尚未登入！"))
		return
	}

	exists, err := h.Users.Exists(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !exists {
		response.Error(c, response.Unauthorized("使用者不存在"))
		return
	}

	log.WithField("userId", id.Hex()).Debug("websocket connected")
	h.Hub.ServeWS(c.Writer, c.Request, id.Hex())
}
