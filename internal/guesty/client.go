// Package guesty provides the Booking Provider (Guesty) token and pricing
// clients, abstracted behind interfaces for testability.
package guesty

import (
	"context"

	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// PricingClient fetches and normalizes pricing for a stay.
type PricingClient interface {
	GetPricing(ctx context.Context, q domain.PricingQuery) (*domain.PricingResult, error)
}

// TokenProvider defines the interface for obtaining OAuth2 bearer tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by token providers that can drop a
// cached token after the upstream rejects it.
type tokenInvalidator interface {
	Invalidate()
}
