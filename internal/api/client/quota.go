package client

import (
	"context"
	"time"
)

// Quota is the outbound pricing quota status.
type Quota struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// GetQuota returns the outbound pricing quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var out Quota
	if err := c.get(ctx, "/api/v1/quota", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
