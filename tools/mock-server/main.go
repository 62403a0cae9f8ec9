// Package main implements a mock Guesty and Google Places server for local
// development. It issues tokens for both Guesty scopes and serves generated
// calendar, quote, and place details responses without real credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

const dateLayout = "2006-01-02"

type options struct {
	currency       string
	tokenTTL       int
	rejectTokens   bool
	tokenRequests  atomic.Int64
	basePrice      float64
	weekendPremium float64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	currency := flag.String("currency", "EUR", "currency of generated prices")
	tokenTTL := flag.Int("token-ttl", 86400, "expires_in of issued tokens, in seconds")
	reject := flag.Bool("reject-tokens", false, "answer every token request with 429")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	opts := &options{
		currency:       *currency,
		tokenTTL:       *tokenTTL,
		rejectTokens:   *reject,
		basePrice:      100,
		weekendPremium: 25,
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock upstream server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, opts)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, opts *options) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", tokenHandler(logger, opts))
	mux.HandleFunc("POST /booking/oauth2/token", tokenHandler(logger, opts))
	mux.HandleFunc("GET /calendar", requireBearer(logger, calendarHandler(logger, opts)))
	mux.HandleFunc("GET /calendar/listings/{listingId}", requireBearer(logger, calendarHandler(logger, opts)))
	mux.HandleFunc("POST /quotes", requireBearer(logger, quoteHandler(logger, opts)))
	mux.HandleFunc("GET /places/details/json", placesHandler(logger))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func tokenHandler(logger *slog.Logger, opts *options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := opts.tokenRequests.Add(1)

		if opts.rejectTokens {
			logger.Warn("rejecting token request", "count", n)
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "too_many_requests",
			})
			return
		}

		if err := r.ParseForm(); err != nil ||
			r.PostForm.Get("grant_type") != "client_credentials" ||
			r.PostForm.Get("client_id") == "" ||
			r.PostForm.Get("client_secret") == "" {
			logger.Warn("token request missing client credentials")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":             "invalid_client",
				"error_description": "client authentication failed",
			})
			return
		}

		scope := r.PostForm.Get("scope")
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": fmt.Sprintf("mock-%s-%d", strings.ReplaceAll(scope, ":", "-"), n),
			"expires_in": opts.tokenTTL,
			"token_type": "Bearer",
			"scope":      scope,
		})
		logger.Info("issued mock token", "scope", scope, "count", n)
	}
}

func requireBearer(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer mock-") {
			logger.Warn("request without a mock bearer token", "path", r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

type stayRange struct {
	listingID string
	start     time.Time
	end       time.Time
}

func (s stayRange) nights() []time.Time {
	var out []time.Time
	for d := s.start; d.Before(s.end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func parseStay(listingID, start, end string) (stayRange, error) {
	if listingID == "" {
		return stayRange{}, fmt.Errorf("listingId is required")
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return stayRange{}, fmt.Errorf("invalid start date %q", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return stayRange{}, fmt.Errorf("invalid end date %q", end)
	}
	if !s.Before(e) {
		return stayRange{}, fmt.Errorf("end date must be after start date")
	}
	return stayRange{listingID: listingID, start: s, end: e}, nil
}

// nightlyPrice is deterministic so local runs are reproducible. Listings
// whose ID starts with "unpriced" have no prices at all.
func (o *options) nightlyPrice(listingID string, d time.Time) (float64, bool) {
	if strings.HasPrefix(listingID, "unpriced") {
		return 0, false
	}
	p := o.basePrice
	if wd := d.Weekday(); wd == time.Friday || wd == time.Saturday {
		p += o.weekendPremium
	}
	return p, true
}

func calendarHandler(logger *slog.Logger, opts *options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		listingID := r.PathValue("listingId")
		if listingID == "" {
			listingID = q.Get("listingId")
		}
		stay, err := parseStay(listingID, q.Get("startDate"), q.Get("endDate"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		days := make([]map[string]any, 0)
		for _, d := range stay.nights() {
			price, ok := opts.nightlyPrice(stay.listingID, d)
			if !ok {
				continue
			}
			days = append(days, map[string]any{
				"date":      d.Format(dateLayout),
				"price":     price,
				"currency":  opts.currency,
				"status":    "available",
				"minNights": 1,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"days": days}})
		logger.Info("calendar", "listing_id", stay.listingID, "days", len(days))
	}
}

type quoteRequest struct {
	ListingID             string `json:"listingId"`
	CheckInDateLocalized  string `json:"checkInDateLocalized"`
	CheckOutDateLocalized string `json:"checkOutDateLocalized"`
	GuestsCount           int    `json:"guestsCount"`
}

func quoteHandler(logger *slog.Logger, opts *options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		stay, err := parseStay(req.ListingID, req.CheckInDateLocalized, req.CheckOutDateLocalized)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		var (
			breakdown []map[string]any
			subtotal  float64
		)
		for _, d := range stay.nights() {
			price, ok := opts.nightlyPrice(stay.listingID, d)
			if !ok {
				continue
			}
			subtotal += price
			breakdown = append(breakdown, map[string]any{
				"date":      d.Format(dateLayout),
				"basePrice": price,
			})
		}

		if len(breakdown) == 0 {
			writeJSON(w, http.StatusOK, map[string]any{"rates": map[string]any{"ratePlans": []any{}}})
			logger.Info("quote without pricing", "listing_id", stay.listingID)
			return
		}

		// Ten percent tax plus a flat cleaning fee.
		taxes := subtotal / 10
		fees := 45.0
		writeJSON(w, http.StatusOK, map[string]any{
			"rates": map[string]any{
				"ratePlans": []any{map[string]any{
					"ratePlan": map[string]any{
						"money": map[string]any{
							"currency":      opts.currency,
							"subTotalPrice": subtotal,
							"totalTaxes":    taxes,
							"totalFees":     fees,
							"totalPrice":    subtotal + taxes + fees,
							"nightlyRateInvoiceItems": []any{map[string]any{
								"normalType":      "AF",
								"nightsBreakdown": breakdown,
							}},
						},
					},
				}},
			},
		})
		logger.Info("quote", "listing_id", stay.listingID, "guests", req.GuestsCount, "subtotal", subtotal)
	}
}

func placesHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":        "REQUEST_DENIED",
				"error_message": "The provided API key is invalid.",
			})
			return
		}
		if q.Get("place_id") == "" {
			writeJSON(w, http.StatusOK, map[string]any{"status": "INVALID_REQUEST"})
			return
		}

		now := time.Now().Unix()
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "OK",
			"result": map[string]any{
				"rating":             4.7,
				"user_ratings_total": 2,
				"reviews": []map[string]any{
					{
						"author_name":               "Mock Guest",
						"rating":                    5,
						"text":                      "Great location, spotless apartment.",
						"time":                      now - 86400*30,
						"relative_time_description": "a month ago",
					},
					{
						"author_name":               "Another Guest",
						"rating":                    4,
						"text":                      "Comfortable stay. Language: " + q.Get("language"),
						"time":                      now - 86400*7,
						"relative_time_description": "a week ago",
					},
				},
			},
		})
		logger.Info("place details", "place_id", q.Get("place_id"), "language", q.Get("language"))
	}
}
