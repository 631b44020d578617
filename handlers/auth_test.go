package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupThenDuplicate(t *testing.T) {
	e := newTestEnv(t)
	body := gin.H{"email": "a@b.co", "password": "abc12345", "name": "Al"}

	res := e.do(t, http.MethodPost, "/sign_up", body, "")
	require.Equal(t, http.StatusCreated, res.code)
	assert.Equal(t, "success", res.body["status"])
	user := res.body["user"].(map[string]interface{})
	assert.Equal(t, "Al", user["name"])
	assert.NotEmpty(t, user["token"])
	assert.NotEmpty(t, user["_id"])

	res = e.do(t, http.MethodPost, "/sign_up", body, "")
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "帳號已被註冊，請替換新的 Email！", res.message())
}

func TestSignupStoresHash(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "hash@b.co", "Hash")

	u := e.users.findEmail("hash@b.co")
	require.NotNil(t, u)
	assert.NotEqual(t, "abc12345", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("abc12345")))
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"missing name", gin.H{"email": "a@b.co", "password": "abc12345"}, "欄位未填寫正確！"},
		{"missing email", gin.H{"password": "abc12345", "name": "Al"}, "欄位未填寫正確！"},
		{"short name", gin.H{"email": "a@b.co", "password": "abc12345", "name": "A"}, "暱稱至少 2 個字元以上"},
		{"short password", gin.H{"email": "a@b.co", "password": "abc123", "name": "Al"}, "密碼需至少 8 碼以上"},
		{"letters only", gin.H{"email": "a@b.co", "password": "abcdefgh", "name": "Al"}, "密碼需英數混合的驗證"},
		{"digits only", gin.H{"email": "a@b.co", "password": "12345678", "name": "Al"}, "密碼需英數混合的驗證"},
		{"symbols", gin.H{"email": "a@b.co", "password": "abc123!!", "name": "Al"}, "密碼需英數混合的驗證"},
		{"bad email", gin.H{"email": "not-an-email", "password": "abc12345", "name": "Al"}, "Email 格式不正確"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			res := e.do(t, http.MethodPost, "/sign_up", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, res.code)
			assert.Equal(t, "error", res.body["status"])
			assert.Equal(t, tt.message, res.message())
		})
	}
}

func TestSignupFormatChecksRunBeforeDuplicateLookup(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "taken@b.co", "Taken")

	res := e.do(t, http.MethodPost, "/sign_up", gin.H{"email": "taken@b.co", "password": "abc", "name": "Al"}, "")
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "密碼需至少 8 碼以上", res.message())
}

func TestSignupCountsNameInCharacters(t *testing.T) {
	e := newTestEnv(t)
	res := e.do(t, http.MethodPost, "/sign_up", gin.H{"email": "tw@b.co", "password": "abc12345", "name": "小明"}, "")
	assert.Equal(t, http.StatusCreated, res.code)
}

func TestSignin(t *testing.T) {
	e := newTestEnv(t)
	_, id := e.signup(t, "in@b.co", "Inna")

	res := e.do(t, http.MethodPost, "/sign_in", gin.H{"email": "in@b.co", "password": "abc12345"}, "")
	require.Equal(t, http.StatusOK, res.code)
	user := res.body["user"].(map[string]interface{})
	assert.Equal(t, id.Hex(), user["_id"])
	assert.Equal(t, "Inna", user["name"])

	claims, err := e.tokens.Parse(user["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.UserID)
}

func TestSigninFailures(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "in@b.co", "Inna")

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"empty", gin.H{}, "帳號密碼不可為空"},
		{"no password", gin.H{"email": "in@b.co"}, "帳號密碼不可為空"},
		{"wrong password", gin.H{"email": "in@b.co", "password": "xyz98765"}, "帳號或密碼錯誤，請重新輸入！"},
		{"unknown email", gin.H{"email": "nobody@b.co", "password": "abc12345"}, "帳號或密碼錯誤，請重新輸入！"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.do(t, http.MethodPost, "/sign_in", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, res.code)
			assert.Equal(t, tt.message, res.message())
		})
	}
}
