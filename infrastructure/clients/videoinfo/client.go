package videoinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/clients"
)

type infoQuery struct {
	VideoURL string `url:"video_url"`
}

type infoResponse struct {
	Data model.VideoInfo `json:"data"`
}

// Client asks the video server for a file's size and duration.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) repository.IVideoInfo {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    clients.NewBearerClient(apiKey, timeout),
	}
}

func (c *Client) GetVideoInfo(ctx context.Context, videoURL string) (model.VideoInfo, error) {
	values, err := query.Values(infoQuery{VideoURL: videoURL})
	if err != nil {
		return model.VideoInfo{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/video/info?"+values.Encode(), nil)
	if err != nil {
		return model.VideoInfo{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return model.VideoInfo{}, fmt.Errorf("video info request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return model.VideoInfo{}, fmt.Errorf("video info: unexpected status %d", res.StatusCode)
	}

	var body infoResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return model.VideoInfo{}, fmt.Errorf("video info: decode: %w", err)
	}
	return body.Data, nil
}
