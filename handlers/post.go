package handlers

import (
	"net/http"
	"time"
	"unicode/utf8"

	"metawall/middleware"
	"metawall/models"
	"metawall/notify"
	"metawall/response"
	"metawall/store"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const maxKeywordLength = 100

type CreatePostRequest struct {
	Content   string `json:"content"`
	Image     string `json:"image"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// GetPosts godoc
// @Summary   List posts, optionally filtered by keyword
// @Tags      posts
// @Produce   json
// @Security  BearerAuth
// @Param     keyword query string false "substring of the content"
// @Param     sortby  query string false "asc or desc (default)"
// @Success   200 {object} map[string]interface{}
// @Router    /posts [get]
func (h *Handler) GetPosts(c *gin.Context) {
	keyword := c.Query("keyword")
	if utf8.RuneCountInString(keyword) > maxKeywordLength {
		response.Error(c, response.BadRequest("關鍵字過長"))
		return
	}

	posts, err := h.Posts.List(c.Request.Context(), store.PostQuery{
		Keyword:   keyword,
		Ascending: c.Query("sortby") == "asc",
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "取得資料", posts)
}

// GetPost godoc
// @Summary   Get one post
// @Tags      posts
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "post id"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	post, err := h.Posts.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(c, response.BadRequest("查無此貼文"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "取得貼文", post)
}

// parseCreatedAt accepts an optional RFC 3339 timestamp. Past values are
// allowed; future ones are not.
func parseCreatedAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, response.BadRequest("日期格式錯誤")
	}
	if t.After(now) {
		return time.Time{}, response.BadRequest("日期不可晚於現在")
	}
	return t, nil
}

// CreatePost godoc
// @Summary   Create a post
// @Tags      posts
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body CreatePostRequest true "post"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		response.Error(c, response.BadRequest("欄位資料填寫不全"))
		return
	}

	createdAt, err := parseCreatedAt(req.CreatedAt, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	post := &models.Post{
		Content:   req.Content,
		Image:     req.Image,
		CreatedAt: createdAt,
		User:      middleware.CurrentUserID(c),
	}
	if err := h.Posts.Create(c.Request.Context(), post); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "新增成功", post)
}

// Like godoc
// @Summary   Like a post
// @Tags      posts
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "post id"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	h.updateLike(c, true)
}

// Unlike godoc
// @Summary   Remove a like
// @Tags      posts
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "post id"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post/{id}/unlike [delete]
func (h *Handler) Unlike(c *gin.Context) {
	h.updateLike(c, false)
}

func (h *Handler) updateLike(c *gin.Context, like bool) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	me := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var (
		post  *models.Post
		added bool
		err   error
		msg   string
	)
	if like {
		post, added, err = h.Posts.Like(ctx, id, me.ID)
		msg = "成功更新讚數"
	} else {
		post, err = h.Posts.Unlike(ctx, id, me.ID)
		msg = "成功移除按讚"
	}
	if errors.Is(err, store.ErrNotFound) {
		response.Error(c, response.BadRequest("按讚錯誤"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if added && post.User != me.ID {
		h.notify(ctx, post.User, notify.NewEvent(notify.EventLike, me.Summary(), post.ID.Hex()))
	}
	response.Success(c, http.StatusOK, msg, post)
}

// GetUserPosts godoc
// @Summary   Posts by one user, with comments
// @Tags      posts
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "user id"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /post/user/{id} [get]
func (h *Handler) GetUserPosts(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	posts, err := h.Posts.ListByUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(posts),
		"posts":   posts,
	})
}

