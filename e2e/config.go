package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR"`
	Colours    bool   `envconfig:"E2E_COLOURS" default:"true"`
	DebugJSON  bool   `envconfig:"E2E_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
