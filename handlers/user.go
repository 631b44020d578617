package handlers

import (
	"net/http"
	"unicode/utf8"

	"metawall/middleware"
	"metawall/response"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type EditUserRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Photo  string `json:"photo"`
}

type UpdatePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// GetUser godoc
// @Summary   Current user's profile
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} map[string]interface{}
// @Router    /user [get]
func (h *Handler) GetUser(c *gin.Context) {
	response.Success(c, http.StatusOK, "取得使用者資料", middleware.CurrentUser(c))
}

// EditUser godoc
// @Summary   Edit name, gender and photo
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body EditUserRequest true "profile"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /user/edit [patch]
func (h *Handler) EditUser(c *gin.Context) {
	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		response.Error(c, response.BadRequest("欄位資料填寫不全"))
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req.Name, req.Gender, req.Photo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "編輯使用者", user)
}

// UpdatePassword godoc
// @Summary   Change the password and get a fresh token
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body UpdatePasswordRequest true "new password"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /user/update_password [patch]
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BadRequest("欄位資料填寫不全"))
		return
	}

	if utf8.RuneCountInString(req.Password) < 8 {
		response.Error(c, response.BadRequest("密碼需至少 8 碼以上，並中英混合"))
		return
	}
	if req.Password != req.ConfirmPassword {
		response.Error(c, response.BadRequest("密碼不一致！"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		response.Error(c, errors.Wrap(err, "hash password"))
		return
	}

	user, err := h.Users.UpdatePassword(c.Request.Context(), middleware.CurrentUserID(c), string(hash))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, user)
}

// GetLikes godoc
// @Summary   Posts the current user liked
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} map[string]interface{}
// @Router    /user/getLikes [get]
func (h *Handler) GetLikes(c *gin.Context) {
	posts, err := h.Posts.LikedBy(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "取得 LikeList", posts)
}

// GetFollowing godoc
// @Summary   Users the current user follows
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} map[string]interface{}
// @Router    /user/following [get]
func (h *Handler) GetFollowing(c *gin.Context) {
	view, err := h.Users.Following(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "取得 following", view)
}
