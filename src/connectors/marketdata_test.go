package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFetchCandles_Success(t *testing.T) {
	var gotAuth, gotSymbol, gotTimeframe string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSymbol = r.URL.Query().Get("symbol")
		gotTimeframe = r.URL.Query().Get("timeframe")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"EURUSD","candles":[
			{"time":"2026-08-12T09:00:00Z","open":1.084,"high":1.086,"low":1.083,"close":1.085,"volume":1200},
			{"time":"not a time","open":1,"high":1,"low":1,"close":1},
			{"time":"2026-08-12T10:00:00Z","open":1.085,"high":1.087,"low":1.084,"close":1.086,"volume":900}
		]}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient("test-api-key", srv.URL, 2*time.Second)

	candles, err := client.FetchCandles(context.Background(), "EURUSD", "H1")
	assert.NoError(t, err)
	// The unparseable bar is dropped, not fatal.
	assert.Len(t, candles, 2)
	assert.Equal(t, 1.085, candles[0].Close)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "EURUSD", gotSymbol)
	assert.Equal(t, "H1", gotTimeframe)
}

func TestFetchCandles_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"EURUSD","candles":[{"time":"2026-08-12T09:00:00Z","open":1,"high":1,"low":1,"close":1}]}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient("test-api-key", srv.URL, 5*time.Second)

	candles, err := client.FetchCandles(context.Background(), "EURUSD", "H1")
	assert.NoError(t, err)
	assert.Len(t, candles, 1)
	assert.Equal(t, 3, calls)
}

func TestFetchCandles_ExhaustedRetriesIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewMarketDataClient("test-api-key", srv.URL, 5*time.Second)

	_, err := client.FetchCandles(context.Background(), "EURUSD", "H1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestFetchCandles_ProviderErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"unknown symbol"}`))
	}))
	defer srv.Close()

	client := NewMarketDataClient("test-api-key", srv.URL, 2*time.Second)

	_, err := client.FetchCandles(context.Background(), "XYZ", "H1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "unknown symbol")
}
