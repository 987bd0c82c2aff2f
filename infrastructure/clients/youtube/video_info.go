package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
)

// Client reads video metadata from the YouTube Data API in API key mode.
type Client struct {
	service *youtube.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
	}
	return &Client{service: service}, nil
}

// GetVideoInfo reports duration and title. YouTube does not expose file size, so SizeBytes is zero.
func (c *Client) GetVideoInfo(ctx context.Context, videoURL string) (model.VideoInfo, error) {
	id, ok := VideoID(videoURL)
	if !ok {
		return model.VideoInfo{}, fmt.Errorf("not a YouTube video url: %s", videoURL)
	}

	res, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).Id(id).Context(ctx).Do()
	if err != nil {
		return model.VideoInfo{}, fmt.Errorf("failed to get video details: %w", err)
	}
	if len(res.Items) == 0 {
		return model.VideoInfo{}, fmt.Errorf("video not found: %s", id)
	}

	video := res.Items[0]
	info := model.VideoInfo{}
	if video.Snippet != nil {
		info.Title = video.Snippet.Title
	}
	if video.ContentDetails != nil {
		seconds, err := ParseDuration(video.ContentDetails.Duration)
		if err != nil {
			return model.VideoInfo{}, err
		}
		info.DurationSeconds = seconds
	}
	return info, nil
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the video id from watch, short, embed and youtu.be links.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id = strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
			}
		}
	default:
		return "", false
	}
	return id, videoIDPattern.MatchString(id)
}

var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO 8601 duration such as PT1H2M3S to seconds.
func ParseDuration(s string) (float64, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []float64{86400, 3600, 60, 1}
	var total float64
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total += float64(n) * unit
	}
	return total, nil
}

// Router sends YouTube links to the Data API and everything else to the video server.
type Router struct {
	youtube  repository.IVideoInfo
	fallback repository.IVideoInfo
}

func NewRouter(yt, fallback repository.IVideoInfo) repository.IVideoInfo {
	if yt == nil {
		return fallback
	}
	return &Router{youtube: yt, fallback: fallback}
}

func (r *Router) GetVideoInfo(ctx context.Context, videoURL string) (model.VideoInfo, error) {
	if _, ok := VideoID(videoURL); ok {
		return r.youtube.GetVideoInfo(ctx, videoURL)
	}
	return r.fallback.GetVideoInfo(ctx, videoURL)
}
