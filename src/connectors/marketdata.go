package connectors

// REST client for the external market-data provider used as a candle
// fallback when no live terminal can serve a fetch request.
// RESTY ONLY + INTERNAL RETRY, hard timeout.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/model"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

// ErrProviderUnavailable marks a transient upstream failure; callers
// report it and move on instead of hanging the request.
var ErrProviderUnavailable = errors.New("market data provider unavailable")

type candlesResponse struct {
	Symbol  string `json:"symbol"`
	Candles []struct {
		Time   string  `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"candles"`
	Error string `json:"error,omitempty"`
}

type MarketDataClient struct {
	apiKey  string
	baseURL string
	http    *resty.Client
}

func NewMarketDataClient(apiKey, baseURL string, timeout time.Duration) *MarketDataClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return false // timeouts and context cancellation are not retried
			}
			return r.StatusCode() >= 500
		})

	return &MarketDataClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    httpClient,
	}
}

func NewMarketDataClientFromEnv() *MarketDataClient {
	config := GetConfig()
	if config.MarketDataBaseURL == "" {
		return nil
	}
	return NewMarketDataClient(config.MarketDataAPIKey, config.MarketDataBaseURL, config.MarketDataTimeout)
}

// FetchCandles pulls one OHLC series. TradeID and Timeframe on the
// returned rows are left for the caller to assign.
func (c *MarketDataClient) FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.CandleSnapshot, error) {
	var out candlesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetQueryParams(map[string]string{
			"symbol":    symbol,
			"timeframe": timeframe,
		}).
		SetResult(&out).
		Get("/v1/candles")
	if err != nil {
		logger.WithError(err).WithField("symbol", symbol).
			Warn("Market data request failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, out.Error)
	}

	candles := make([]model.CandleSnapshot, 0, len(out.Candles))
	for _, c := range out.Candles {
		ts, err := time.Parse(time.RFC3339, c.Time)
		if err != nil {
			continue
		}
		candles = append(candles, model.CandleSnapshot{
			Time:   ts.UTC(),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return candles, nil
}
