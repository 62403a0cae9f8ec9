package guesty

import "time"

// Scope keys for the two Guesty API audiences.
const (
	ScopeOpenAPI       = "open_api"
	ScopeBookingEngine = "booking_engine:api"
)

const (
	// refreshMargin is subtracted from the upstream TTL so a token never
	// expires in the middle of a dependent pricing call.
	refreshMargin = 300 * time.Second
	// minValidity is the floor for the cache window of short-lived tokens.
	minValidity = 60 * time.Second
	// defaultTTL applies when the token response omits expires_in.
	defaultTTL = 3600 * time.Second
)

// Token is an issued bearer token. It is replaced, never mutated, on refresh.
type Token struct {
	Value    string
	IssuedAt time.Time
	TTL      time.Duration
	Scope    string
}

// ExpiresAt returns the end of the token's cache window:
// IssuedAt + max(TTL - 300s, 60s).
func (t Token) ExpiresAt() time.Time {
	window := t.TTL - refreshMargin
	if window < minValidity {
		window = minValidity
	}
	return t.IssuedAt.Add(window)
}

// BrokerState describes where a TokenBroker is in its lifecycle.
type BrokerState string

// Broker states.
const (
	StateEmpty   BrokerState = "empty"
	StateValid   BrokerState = "valid"
	StateBackoff BrokerState = "backoff"
)

// BrokerStatus is a point-in-time view of a broker, safe to expose since it
// never carries the token value.
type BrokerStatus struct {
	Scope        string      `json:"scope"                   example:"open_api"`
	State        BrokerState `json:"state"                   example:"valid"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	BackoffUntil *time.Time  `json:"backoff_until,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   any    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type quoteGuests struct {
	NumberOfAdults   int `json:"numberOfAdults"`
	NumberOfChildren int `json:"numberOfChildren"`
	NumberOfInfants  int `json:"numberOfInfants"`
}

type quoteRequest struct {
	ListingID             string      `json:"listingId"`
	CheckInDateLocalized  string      `json:"checkInDateLocalized"`
	CheckOutDateLocalized string      `json:"checkOutDateLocalized"`
	NumberOfGuests        quoteGuests `json:"numberOfGuests"`
	GuestsCount           int         `json:"guestsCount"`
	Source                string      `json:"source"`
}
