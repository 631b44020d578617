package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("a.JPG", 10))
	assert.NoError(t, Check("a.png", MaxImageSize))
	assert.Equal(t, ErrUnsupportedType, Check("a.gif", 10))
	assert.Equal(t, ErrUnsupportedType, Check("noext", 10))
	assert.Equal(t, ErrTooLarge, Check("a.jpeg", MaxImageSize+1))
}

func TestImgurUploadWithRefreshToken(t *testing.T) {
	var gotAuth, gotAlbum, gotImage string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/3/image", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotAlbum = r.Form.Get("album")
		gotImage = r.Form.Get("image")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{"link":"https://i.imgur.com/abc.png"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	up := NewImgur(ImgurConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		AlbumID:      "album",
		BaseURL:      srv.URL,
	})

	link, err := up.Upload(context.Background(), "a.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/abc.png", link)
	assert.Equal(t, "Bearer access", gotAuth)
	assert.Equal(t, "album", gotAlbum)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), gotImage)
}

func TestImgurAnonymousUpload(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{"link":"https://i.imgur.com/x.jpg"}}`))
	}))
	defer srv.Close()

	up := NewImgur(ImgurConfig{ClientID: "id", BaseURL: srv.URL})
	link, err := up.Upload(context.Background(), "x.jpg", []byte("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/x.jpg", link)
	assert.Equal(t, "Client-ID id", gotAuth)
}

func TestImgurUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"status":400,"data":{"error":"Bad image"}}`))
	}))
	defer srv.Close()

	up := NewImgur(ImgurConfig{ClientID: "id", BaseURL: srv.URL})
	_, err := up.Upload(context.Background(), "x.jpg", []byte("jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad image")
}
