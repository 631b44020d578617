package handlers

import (
	"net/http"

	"metawall/middleware"
	"metawall/notify"
	"metawall/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// followTarget resolves and checks the :id parameter shared by follow and
// unfollow. ok is false once an error response has been written.
func (h *Handler) followTarget(c *gin.Context, selfMessage string) (primitive.ObjectID, bool) {
	target, ok := objectIDParam(c, "id")
	if !ok {
		return target, false
	}

	exists, err := h.Users.Exists(c.Request.Context(), target)
	if err != nil {
		response.Error(c, err)
		return target, false
	}
	if !exists {
		response.Error(c, response.BadRequest("查無用戶"))
		return target, false
	}

	if target == middleware.CurrentUserID(c) {
		response.Error(c, response.BadRequest(selfMessage))
		return target, false
	}
	return target, true
}

// Follow godoc
// @Summary   Follow a user
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "user id"
// @Success   200 {object} map[string]string
// @Failure   400 {object} map[string]string
// @Router    /user/{id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	target, ok := h.followTarget(c, "您無法追蹤自己")
	if !ok {
		return
	}

	me := middleware.CurrentUser(c)
	if err := h.Users.Follow(c.Request.Context(), me.ID, target); err != nil {
		response.Error(c, err)
		return
	}

	if !me.IsFollowing(target) {
		h.notify(c.Request.Context(), target, notify.NewEvent(notify.EventFollow, me.Summary(), ""))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "您已成功追蹤！"})
}

// Unfollow godoc
// @Summary   Stop following a user
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "user id"
// @Success   200 {object} map[string]string
// @Failure   400 {object} map[string]string
// @Router    /user/{id}/unfollow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	target, ok := h.followTarget(c, "您無法取消追蹤自己")
	if !ok {
		return
	}

	if err := h.Users.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), target); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "您已成功取消追蹤！"})
}
