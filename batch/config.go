package batch

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/ratelimit"
)

type Config struct {
	ProjectConcurrency int `envconfig:"SMARTDATA_PROJECT_CONCURRENCY" default:"1"`
	RequestsPerSecond  int `envconfig:"SMARTDATA_REQUESTS_PER_SECOND" default:"10"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// RateLimiter throttles the SmartData API calls of all projects
type RateLimiter struct {
	rl ratelimit.Limiter
}

func NewRateLimiter(config Config) *RateLimiter {
	if config.RequestsPerSecond <= 0 {
		return &RateLimiter{rl: ratelimit.NewUnlimited()}
	}
	return &RateLimiter{
		rl: ratelimit.New(config.RequestsPerSecond),
	}
}

// WaitOrContinue blocks if the rate limit is exceeded
func (r *RateLimiter) WaitOrContinue() {
	r.rl.Take()
}
