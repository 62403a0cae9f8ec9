package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rental-gateway/internal/metrics"
)

func testAlert(sev Severity) Alert {
	return Alert{
		Key:         "token:open_api",
		Title:       "Guesty token refresh failing",
		Description: "open_api tokens cannot be refreshed.",
		Severity:    sev,
		Fields: []Field{
			{Name: "Scope", Value: "open_api"},
			{Name: "State", Value: "backoff"},
		},
	}
}

func TestDiscordNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      Alert
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
	}{
		{
			name:       "critical alert uses red",
			alert:      testAlert(SeverityCritical),
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
		},
		{
			name:       "warning alert uses orange",
			alert:      testAlert(SeverityWarning),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
		},
		{
			name:       "resolved alert uses green",
			alert:      testAlert(SeverityResolved),
			statusCode: http.StatusOK,
			wantColor:  colorGreen,
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testAlert(SeverityCritical),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testAlert(SeverityCritical),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.SendAlert(context.Background(), &tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, embed.Title, tt.alert.Title)
			assert.Contains(t, embed.Title, string(tt.alert.Severity))
			assert.Equal(t, tt.alert.Description, embed.Description)
			require.Len(t, embed.Fields, 2)
			assert.Equal(t, "Scope", embed.Fields[0].Name)
			require.NotNil(t, embed.Footer)
			assert.Equal(t, "token:open_api", embed.Footer.Text)
		})
	}
}

func TestDiscordNotifier_SendAlert_NoFields(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := NewDiscordNotifier(srv.URL).SendAlert(context.Background(), &Alert{
		Title:    "Quota low",
		Severity: SeverityWarning,
	})
	require.NoError(t, err)

	embeds, ok := raw["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	embed, ok := embeds[0].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, embed, "fields")
	assert.NotContains(t, embed, "footer")
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := NewDiscordNotifier(url)
	alert := testAlert(SeverityCritical)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://bad-url")
	alert := testAlert(SeverityCritical)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestSendAlert_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	d := NewDiscordNotifier(srv.URL)
	alert := testAlert(SeverityWarning)
	require.NoError(t, d.SendAlert(context.Background(), &alert))

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}

// compile-time interface check.
var _ Notifier = (*DiscordNotifier)(nil)
