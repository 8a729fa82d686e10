package terminal

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HeartbeatInterval is how often agents are expected to call in.
	HeartbeatInterval time.Duration `envconfig:"FLEET_HEARTBEAT_INTERVAL" default:"30s"`
	// StalenessMultiplier sets the health cutoff as a multiple of the
	// heartbeat interval.
	StalenessMultiplier int `envconfig:"FLEET_HEARTBEAT_STALENESS_MULTIPLIER" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
