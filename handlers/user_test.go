package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetUserHidesPassword(t *testing.T) {
	e := newTestEnv(t)
	tok, id := e.signup(t, "me@b.co", "Me")

	res := e.do(t, http.MethodGet, "/user", nil, tok)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "取得使用者資料", res.message())
	assert.Equal(t, id.Hex(), res.data()["_id"])
	assert.Equal(t, "me@b.co", res.data()["email"])
	assert.NotContains(t, res.data(), "password")
}

func TestEditUser(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signup(t, "me@b.co", "Me")

	res := e.do(t, http.MethodPatch, "/user/edit", gin.H{"gender": "male"}, tok)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "欄位資料填寫不全", res.message())

	res = e.do(t, http.MethodPatch, "/user/edit", gin.H{"name": "Renamed", "gender": "female", "photo": "https://x/p.png"}, tok)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "編輯使用者", res.message())
	assert.Equal(t, "Renamed", res.data()["name"])
	assert.Equal(t, "female", res.data()["gender"])
	assert.Equal(t, "https://x/p.png", res.data()["photo"])
}

func TestUpdatePassword(t *testing.T) {
	e := newTestEnv(t)
	tok, id := e.signup(t, "pw@b.co", "Pat")

	res := e.do(t, http.MethodPatch, "/user/update_password", gin.H{"password": "short", "confirmPassword": "short"}, tok)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "密碼需至少 8 碼以上，並中英混合", res.message())

	res = e.do(t, http.MethodPatch, "/user/update_password", gin.H{"password": "newpass99", "confirmPassword": "newpass98"}, tok)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "密碼不一致！", res.message())

	res = e.do(t, http.MethodPatch, "/user/update_password", gin.H{"password": "newpass99", "confirmPassword": "newpass99"}, tok)
	require.Equal(t, http.StatusOK, res.code)
	user := res.body["user"].(map[string]interface{})
	assert.Equal(t, id.Hex(), user["_id"])
	assert.Equal(t, "Pat", user["name"])

	res = e.do(t, http.MethodGet, "/user", nil, user["token"].(string))
	assert.Equal(t, http.StatusOK, res.code)

	res = e.do(t, http.MethodPost, "/sign_in", gin.H{"email": "pw@b.co", "password": "abc12345"}, "")
	assert.Equal(t, http.StatusBadRequest, res.code)
	res = e.do(t, http.MethodPost, "/sign_in", gin.H{"email": "pw@b.co", "password": "newpass99"}, "")
	assert.Equal(t, http.StatusOK, res.code)
}

func TestUpdatePasswordRejectsMalformedBody(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signup(t, "pw@b.co", "Pat")

	req := httptest.NewRequest(http.MethodPatch, "/user/update_password", strings.NewReader(`{"password":`))
	req.Header.Set("Content-Type", "application/json")
	res := e.serve(t, req, tok)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "欄位資料填寫不全", res.message())
}

func TestFollowValidation(t *testing.T) {
	e := newTestEnv(t)
	tok, me := e.signup(t, "me@b.co", "Me")

	tests := []struct {
		name    string
		method  string
		path    string
		message string
	}{
		{"bad id", http.MethodPost, "/user/nope/follow", "路由資訊錯誤"},
		{"unknown user", http.MethodPost, "/user/" + primitive.NewObjectID().Hex() + "/follow", "查無用戶"},
		{"self follow", http.MethodPost, "/user/" + me.Hex() + "/follow", "您無法追蹤自己"},
		{"self unfollow", http.MethodDelete, "/user/" + me.Hex() + "/unfollow", "您無法取消追蹤自己"},
		{"unknown unfollow", http.MethodDelete, "/user/" + primitive.NewObjectID().Hex() + "/unfollow", "查無用戶"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.do(t, tt.method, tt.path, nil, tok)
			assert.Equal(t, http.StatusBadRequest, res.code)
			assert.Equal(t, tt.message, res.message())
		})
	}
}

func TestFollowUnfollow(t *testing.T) {
	e := newTestEnv(t)
	tok, me := e.signup(t, "me@b.co", "Me")
	_, bob := e.signup(t, "bob@b.co", "Bob")

	for i := 0; i < 2; i++ {
		res := e.do(t, http.MethodPost, "/user/"+bob.Hex()+"/follow", nil, tok)
		require.Equal(t, http.StatusOK, res.code)
		assert.Equal(t, "您已成功追蹤！", res.message())
	}

	follower := e.users.byID[me]
	target := e.users.byID[bob]
	assert.Len(t, follower.Following, 1, "repeat follow must not duplicate the edge")
	assert.Len(t, target.Followers, 1)
	assert.Equal(t, bob, follower.Following[0].User)
	assert.Equal(t, me, target.Followers[0].User)

	events := e.notifier.events()
	require.Len(t, events, 1, "only the first follow notifies")
	assert.Equal(t, bob.Hex(), events[0].userID)
	assert.Equal(t, "follow", events[0].event.Type)

	res := e.do(t, http.MethodGet, "/user/following", nil, tok)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "取得 following", res.message())
	following := res.data()["following"].([]interface{})
	require.Len(t, following, 1)
	entry := following[0].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "Bob", entry["name"])

	res = e.do(t, http.MethodDelete, "/user/"+bob.Hex()+"/unfollow", nil, tok)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "您已成功取消追蹤！", res.message())
	assert.Empty(t, e.users.byID[me].Following)
	assert.Empty(t, e.users.byID[bob].Followers)

	res = e.do(t, http.MethodDelete, "/user/"+bob.Hex()+"/unfollow", nil, tok)
	assert.Equal(t, http.StatusOK, res.code, "unfollowing twice is harmless")
}
