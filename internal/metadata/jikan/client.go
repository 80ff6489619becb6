// Package jikan wraps the Jikan (MyAnimeList) REST API behind a
// process-wide request throttle. Catalog failures degrade to empty
// results; they are logged, never returned to callers.
package jikan

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const baseURL = "https://api.jikan.moe/v4"

// Client queries the Jikan catalog. Jikan allows roughly one request per
// second on the free tier, enforced here with a single-token limiter.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	base       string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		base:       baseURL,
	}
}

// NewClientWithBase points the client at an alternate API root, used by
// tests.
func NewClientWithBase(base string) *Client {
	c := NewClient()
	c.base = base
	return c
}

// wait blocks until the limiter allows the next request.
func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}
