package ingest

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MonthlySyncLimit caps accepted trade sync calls per connection
	// per calendar month.
	MonthlySyncLimit int `envconfig:"FLEET_MONTHLY_SYNC_LIMIT" default:"100"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
