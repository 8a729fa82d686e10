package handler

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Environment toggles the heartbeat dev bypass when the agent key
	// is unset; production never bypasses.
	Environment        string `envconfig:"ENVIRONMENT" default:"development"`
	AgentAPIKey        string `envconfig:"FLEET_AGENT_API_KEY" default:""`
	OrchestratorSecret string `envconfig:"FLEET_ORCHESTRATOR_SECRET" default:""`
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
