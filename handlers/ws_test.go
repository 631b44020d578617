package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"metawall/notify"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationsRequiresHub(t *testing.T) {
	e := newTestEnv(t)
	e.r.GET("/ws", e.h.Notifications)

	res := e.do(t, http.MethodGet, "/ws?token=x", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, res.code)
}

func TestNotificationsWebsocket(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub()
	go hub.Run(ctx)
	e.h.Hub = hub
	e.r.GET("/ws", e.h.Notifications)

	tok, me := e.signup(t, "ws@b.co", "Socket")
	ghost, err := e.tokens.Issue(primitive.NewObjectID().Hex(), "ghost")
	require.NoError(t, err)

	res := e.do(t, http.MethodGet, "/ws?token=garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.code)
	res = e.do(t, http.MethodGet, "/ws?token="+ghost, nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "使用者不存在", res.message())

	srv := httptest.NewServer(e.r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connected(me.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(ctx, me.Hex(), notify.NewEvent(notify.EventFollow, nil, ""))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string       `json:"type"`
		Payload notify.Event `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, notify.EventFollow, msg.Type)
	assert.Equal(t, "有人 開始追蹤你", msg.Payload.Message)
}
