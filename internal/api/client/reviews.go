package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// GetReviews returns the review summary of a place. An empty language
// uses the server default.
func (c *Client) GetReviews(ctx context.Context, placeID, language string) (*domain.ReviewSummary, error) {
	q := url.Values{}
	q.Set("placeId", placeID)
	if language != "" {
		q.Set("language", language)
	}

	var out domain.ReviewSummary
	if err := c.get(ctx, "/api/v1/reviews?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
