package handlers

import (
	"net/http"

	"metawall/middleware"
	"metawall/models"
	"metawall/response"

	"github.com/gin-gonic/gin"
)

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// GetVapidPublicKey godoc
// @Summary  VAPID public key for Web Push subscriptions
// @Tags     notifications
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]string
// @Router   /vapid-public-key [get]
func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.VAPIDKey == "" {
		response.Error(c, response.New(http.StatusServiceUnavailable, "推播服務尚未設定"))
		return
	}
	response.Success(c, http.StatusOK, "取得推播公鑰", gin.H{"publicKey": h.VAPIDKey})
}

// Subscribe godoc
// @Summary   Register a browser for Web Push
// @Tags      notifications
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body SubscribeRequest true "push subscription"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BadRequest("欄位資料填寫不全"))
		return
	}

	sub := &models.PushSubscription{
		User:     middleware.CurrentUserID(c),
		Endpoint: req.Endpoint,
		Keys:     models.PushKeys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
	}
	if err := h.Subscriptions.Save(c.Request.Context(), sub); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "訂閱成功", nil)
}
