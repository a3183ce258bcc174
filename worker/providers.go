package worker

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HealthCheckAddress string `envconfig:"SMARTDATA_HEALTHCHECK_ADDRESS" default:":8080"`
	LogLevel           string `envconfig:"SMARTDATA_LOG_LEVEL" default:"debug"`
}

func configProvider() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}
