package guard

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RateLimitMax    int           `envconfig:"FLEET_RATE_LIMIT_MAX" default:"5"`
	RateLimitWindow time.Duration `envconfig:"FLEET_RATE_LIMIT_WINDOW" default:"1h"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
