package handlers

import (
	"net/http"
	"strings"

	"metawall/middleware"
	"metawall/models"
	"metawall/notify"
	"metawall/response"
	"metawall/store"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// CreateComment godoc
// @Summary   Comment on a post
// @Tags      posts
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path string true "post id"
// @Param     body body CreateCommentRequest true "comment"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post/{id}/comment [post]
func (h *Handler) CreateComment(c *gin.Context) {
	postID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		response.Error(c, response.BadRequest("留言不可為空"))
		return
	}

	ctx := c.Request.Context()
	post, err := h.Posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(c, response.BadRequest("查無此貼文"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	me := middleware.CurrentUser(c)
	comment := &models.Comment{Post: postID, User: me.ID, Comment: req.Comment}
	if err := h.Comments.Create(ctx, comment); err != nil {
		response.Error(c, err)
		return
	}

	if post.User != me.ID {
		h.notify(ctx, post.User, notify.NewEvent(notify.EventComment, me.Summary(), postID.Hex()))
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"comments": comment},
	})
}
