package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

const defaultSearchLimit = 10

// Search looks up animes by title, ordered by popularity. Returns an
// empty slice on any failure.
func (c *Client) Search(ctx context.Context, query string, limit int) []models.Anime {
	if strings.TrimSpace(query) == "" {
		return []models.Anime{}
	}
	if limit <= 0 || limit > 25 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("order_by", "popularity")
	params.Set("sort", "asc")

	var parsed searchResponse
	if err := c.getJSON(ctx, c.base+"/anime?"+params.Encode(), &parsed); err != nil {
		log.Printf("[jikan] search %q failed: %v", query, err)
		return []models.Anime{}
	}

	out := make([]models.Anime, 0, len(parsed.Data))
	for _, r := range parsed.Data {
		out = append(out, r.toModel())
	}
	return out
}

// Details fetches one anime by its MAL id. Returns nil on any failure,
// including not-found.
func (c *Client) Details(ctx context.Context, malID int64) *models.Anime {
	var parsed detailResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/anime/%d", c.base, malID), &parsed); err != nil {
		log.Printf("[jikan] details for %d failed: %v", malID, err)
		return nil
	}
	if parsed.Data == nil {
		return nil
	}

	anime := parsed.Data.toModel()
	return &anime
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
