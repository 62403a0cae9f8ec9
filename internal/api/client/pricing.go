package client

import (
	"context"

	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// PricingParams describes a stay to price.
type PricingParams struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Guests    int    `json:"guests,omitempty"`
	Children  int    `json:"children,omitempty"`
	Infants   int    `json:"infants,omitempty"`
}

// Pricing is the server's answer to a pricing request.
type Pricing struct {
	ListingID       string               `json:"listing_id"`
	CheckIn         string               `json:"check_in"`
	CheckOut        string               `json:"check_out"`
	Guests          int                  `json:"guests"`
	Nights          int                  `json:"nights"`
	Status          string               `json:"status"`
	Message         string               `json:"message,omitempty"`
	Days            []domain.NightlyRate `json:"days"`
	Totals          *domain.Totals       `json:"totals"`
	AveragePerNight *float64             `json:"average_per_night"`
	Shape           string               `json:"shape,omitempty"`
	Partial         bool                 `json:"partial"`
}

// GetPricing prices a stay.
func (c *Client) GetPricing(ctx context.Context, p PricingParams) (*Pricing, error) {
	var out Pricing
	if err := c.post(ctx, "/api/v1/pricing", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
