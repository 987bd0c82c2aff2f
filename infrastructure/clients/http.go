package clients

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// NewBearerClient returns an http.Client that sends token as a bearer credential.
func NewBearerClient(token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout
	return client
}
