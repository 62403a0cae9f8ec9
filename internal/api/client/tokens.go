package client

import (
	"context"
	"net/url"
	"time"
)

// TokenStatus is the state of one token broker.
type TokenStatus struct {
	Scope        string     `json:"scope"`
	State        string     `json:"state"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	BackoffUntil *time.Time `json:"backoff_until,omitempty"`
}

// ListTokens returns the status of every token broker.
func (c *Client) ListTokens(ctx context.Context) ([]TokenStatus, error) {
	var out struct {
		Brokers []TokenStatus `json:"brokers"`
	}
	if err := c.get(ctx, "/api/v1/tokens", &out); err != nil {
		return nil, err
	}
	return out.Brokers, nil
}

// InvalidateToken drops the cached token of a scope.
func (c *Client) InvalidateToken(ctx context.Context, scope string) error {
	return c.del(ctx, "/api/v1/tokens/"+url.PathEscape(scope), nil)
}
