package imagehost

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const imgurBaseURL = "https://api.imgur.com"

type ImgurConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AlbumID      string
	BaseURL      string
}

type Imgur struct {
	client   *resty.Client
	clientID string
	albumID  string
	tokens   oauth2.TokenSource
}

type imgurResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		Link  string `json:"link"`
		Error string `json:"error"`
	} `json:"data"`
}

// NewImgur builds an Imgur uploader. With a refresh token, uploads are made
// as the account owner so they can land in an album; without one they are
// anonymous uploads keyed by the client id.
func NewImgur(cfg ImgurConfig) *Imgur {
	base := cfg.BaseURL
	if base == "" {
		base = imgurBaseURL
	}

	i := &Imgur{
		client:   resty.New().SetBaseURL(base).SetTimeout(30 * time.Second),
		clientID: cfg.ClientID,
		albumID:  cfg.AlbumID,
	}

	if cfg.RefreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  base + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		i.tokens = conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}
	return i
}

func (i *Imgur) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	form := map[string]string{
		"image": base64.StdEncoding.EncodeToString(data),
		"type":  "base64",
		"name":  filename,
	}
	if i.albumID != "" {
		form["album"] = i.albumID
	}

	result := &imgurResponse{}
	req := i.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		SetError(result)

	if i.tokens != nil {
		tok, err := i.tokens.Token()
		if err != nil {
			return "", errors.Wrap(err, "refresh imgur token")
		}
		req.SetAuthToken(tok.AccessToken)
	} else {
		req.SetHeader("Authorization", "Client-ID "+i.clientID)
	}

	resp, err := req.Post("/3/image")
	if err != nil {
		return "", errors.Wrap(err, "imgur upload")
	}
	if resp.IsError() || !result.Success {
		return "", errors.Errorf("imgur upload failed: status %d: %s", resp.StatusCode(), result.Data.Error)
	}
	if result.Data.Link == "" {
		return "", errors.New("imgur upload returned no link")
	}
	return result.Data.Link, nil
}
