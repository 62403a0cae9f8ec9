package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/rental-gateway/internal/guesty"
)

// TokenRegistry exposes broker state without token values.
type TokenRegistry interface {
	Statuses() []guesty.BrokerStatus
	Invalidate(scope string) error
}

// TokensHandler provides token broker status and invalidation endpoints.
type TokensHandler struct {
	brokers TokenRegistry
}

// NewTokensHandler creates a new TokensHandler.
func NewTokensHandler(b TokenRegistry) *TokensHandler {
	return &TokensHandler{brokers: b}
}

// TokensOutput is the response body for the token status endpoint.
type TokensOutput struct {
	Body struct {
		Brokers []guesty.BrokerStatus `json:"brokers" doc:"One entry per token scope"`
	}
}

// ListTokens returns the status of every token broker.
func (h *TokensHandler) ListTokens(_ context.Context, _ *struct{}) (*TokensOutput, error) {
	resp := &TokensOutput{}
	resp.Body.Brokers = h.brokers.Statuses()
	if resp.Body.Brokers == nil {
		resp.Body.Brokers = []guesty.BrokerStatus{}
	}
	return resp, nil
}

// InvalidateTokenInput is the request for dropping a cached token.
type InvalidateTokenInput struct {
	Scope string `path:"scope" example:"open_api" doc:"Token scope key"`
}

// InvalidateToken drops the cached token of one scope so the next pricing
// call fetches a fresh one.
func (h *TokensHandler) InvalidateToken(
	_ context.Context,
	input *InvalidateTokenInput,
) (*struct{}, error) {
	if err := h.brokers.Invalidate(input.Scope); err != nil {
		var cfgErr *guesty.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, huma.Error404NotFound("unknown token scope " + input.Scope)
		}
		return nil, huma.Error500InternalServerError("invalidating token: " + err.Error())
	}
	return nil, nil
}

// RegisterTokenRoutes registers the token endpoints with the Huma API.
func RegisterTokenRoutes(api huma.API, h *TokensHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tokens",
		Method:      http.MethodGet,
		Path:        "/api/v1/tokens",
		Summary:     "List token broker status",
		Description: "Returns the cache state, expiry, and backoff window of every Guesty token scope. Token values are never exposed.",
		Tags:        []string{"guesty"},
	}, h.ListTokens)

	huma.Register(api, huma.Operation{
		OperationID:   "invalidate-token",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tokens/{scope}",
		Summary:       "Invalidate a cached token",
		Description:   "Drops the cached token of one scope. The next pricing call requests a new one.",
		Tags:          []string{"guesty"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.InvalidateToken)
}
