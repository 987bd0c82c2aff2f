package videoinfo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"subtitle-credit/infrastructure/clients/videoinfo"
)

func TestClient_GetVideoInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video/info", r.URL.Path)
		assert.Equal(t, "https://cdn.example.com/a b.mp4", r.URL.Query().Get("video_url"))
		assert.Equal(t, "Bearer video-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"video_size_in_bytes":52428800,"video_duration_in_seconds":600}}`))
	}))
	defer srv.Close()

	info, err := videoinfo.NewClient(srv.URL+"/", "video-key", time.Second).
		GetVideoInfo(context.Background(), "https://cdn.example.com/a b.mp4")

	require.NoError(t, err)
	assert.Equal(t, int64(52428800), info.SizeBytes)
	assert.Equal(t, 600.0, info.DurationSeconds)
}

func TestClient_GetVideoInfo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"data":`)) }},
		{"too slow", func(w http.ResponseWriter, r *http.Request) { time.Sleep(200 * time.Millisecond) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := videoinfo.NewClient(srv.URL, "", 50*time.Millisecond).
				GetVideoInfo(context.Background(), "https://cdn.example.com/a.mp4")
			assert.Error(t, err)
		})
	}
}
