package handlers

import (
	"net/http"
	"regexp"
	"unicode/utf8"

	"metawall/models"
	"metawall/response"
	"metawall/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// passwordRule requires letters and digits, nothing else.
var passwordRule = regexp.MustCompile(`^([a-zA-Z]+\d+|\d+[a-zA-Z]+)[a-zA-Z0-9]*$`)

var validate = validator.New()

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateSignup(req SignupRequest) error {
	switch {
	case req.Email == "" || req.Password == "" || req.Name == "":
		return response.BadRequest("欄位未填寫正確！")
	case utf8.RuneCountInString(req.Name) < 2:
		return response.BadRequest("暱稱至少 2 個字元以上")
	case utf8.RuneCountInString(req.Password) < 8:
		return response.BadRequest("密碼需至少 8 碼以上")
	case !passwordRule.MatchString(req.Password):
		return response.BadRequest("密碼需英數混合的驗證")
	case validate.Var(req.Email, "email") != nil:
		return response.BadRequest("Email 格式不正確")
	}
	return nil
}

// Signup godoc
// @Summary  Register a new account
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body SignupRequest true "account"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Router   /sign_up [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BadRequest("欄位未填寫正確！"))
		return
	}
	if err := validateSignup(req); err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	taken := response.BadRequest("帳號已被註冊，請替換新的 Email！")

	_, err := h.Users.FindByEmail(ctx, req.Email)
	if err == nil {
		response.Error(c, taken)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		response.Error(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		response.Error(c, errors.Wrap(err, "hash password"))
		return
	}

	user := &models.User{Email: req.Email, Password: string(hash), Name: req.Name}
	err = h.Users.Create(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		response.Error(c, taken)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	h.sendToken(c, http.StatusCreated, user)
}

// Signin godoc
// @Summary  Sign in with email and password
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body SigninRequest true "credentials"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Router   /sign_in [post]
func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		response.Error(c, response.BadRequest("帳號密碼不可為空"))
		return
	}

	wrong := response.BadRequest("帳號或密碼錯誤，請重新輸入！")

	user, err := h.Users.FindByEmailWithPassword(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		response.Error(c, wrong)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Error(c, wrong)
		return
	}

	h.sendToken(c, http.StatusOK, user)
}
