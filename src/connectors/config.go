package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MarketDataBaseURL empty disables the candle fallback entirely.
	MarketDataBaseURL string        `envconfig:"FLEET_MARKET_DATA_BASE_URL" default:""`
	MarketDataAPIKey  string        `envconfig:"FLEET_MARKET_DATA_API_KEY" default:""`
	MarketDataTimeout time.Duration `envconfig:"FLEET_MARKET_DATA_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
