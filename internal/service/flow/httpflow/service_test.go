package httpflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantora/coinsentry/internal/service/flow"
)

func TestService_GetExchangeFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/flows/inflow", r.URL.Path)
		assert.Equal(t, "BTC", r.URL.Query().Get("asset"))
		assert.Equal(t, "binance", r.URL.Query().Get("exchange"))
		assert.Equal(t, "24h0m0s", r.URL.Query().Get("window"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"statistics": {
				"total24h": "12345.67",
				"whaleVolume": "890.12",
				"whaleTransactions": 7,
				"netBalance": "-45.5"
			}
		}`))
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "secret")
	stats, err := svc.GetExchangeFlow(context.Background(), flow.Inflow, flow.Request{
		Asset:    "BTC",
		Exchange: "binance",
		Window:   24 * time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "12345.67", stats.Total24h.String())
	assert.Equal(t, "890.12", stats.WhaleVolume.String())
	assert.Equal(t, int64(7), stats.WhaleTransactions)
	assert.Equal(t, "-45.5", stats.NetBalance.String())
}

func TestService_GetExchangeFlow_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "")
	_, err := svc.GetExchangeFlow(context.Background(), flow.Outflow, flow.Request{Asset: "BTC"})
	assert.ErrorContains(t, err, "status 429")
}

func TestService_GetExchangeFlow_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"非法JSON", `{"statistics":`},
		{"非法数字", `{"statistics": {"total24h": "abc", "whaleVolume": "1", "netBalance": "1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewService(srv.URL, "")
			_, err := svc.GetExchangeFlow(context.Background(), flow.Inflow, flow.Request{Asset: "BTC"})
			assert.Error(t, err)
		})
	}
}
