package token

import (
	"github.com/benbjohnson/clock"
	"github.com/kelseyhightower/envconfig"
	"github.com/susom/smartdata-worker/httpclient"
	"github.com/susom/smartdata-worker/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"time"
)

var Module = fx.Provide(
	NewConfig,
	NewStore,
	NewIssuerFromConfig,
	NewCacheFromConfig,
)

type Config struct {
	ClientId      string        `envconfig:"SMARTDATA_CLIENT_ID"`
	ClientSecret  string        `envconfig:"SMARTDATA_CLIENT_SECRET"`
	PrivateKeyPem string        `envconfig:"SMARTDATA_PRIVATE_KEY"`
	KeyId         string        `envconfig:"SMARTDATA_KEY_ID"`
	TokenURL      string        `envconfig:"SMARTDATA_TOKEN_URL" default:"https://fhir.epic.com/interconnect-fhir-oauth/oauth2/token"`
	TTL           time.Duration `envconfig:"SMARTDATA_TOKEN_TTL" default:"3600s"`
	RedisKey      string        `envconfig:"SMARTDATA_TOKEN_REDIS_KEY" default:"smartdata:token"`

	Timeout        time.Duration `envconfig:"SMARTDATA_TIMEOUT" default:"30s"`
	ConnectTimeout time.Duration `envconfig:"SMARTDATA_CONNECT_TIMEOUT" default:"5s"`
	TLSInsecure    bool          `envconfig:"SMARTDATA_TLS_INSECURE" default:"false"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// NewStore persists tokens in redis when it's configured, so that all workers share a token
func NewStore(config Config, clients *store.Clients) Store {
	if clients.Redis == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(clients.Redis, config.RedisKey)
}

func NewIssuerFromConfig(config Config) (Issuer, error) {
	restyClient := httpclient.NewRestyClient(httpclient.Options{
		Timeout:            config.Timeout,
		ConnectTimeout:     config.ConnectTimeout,
		InsecureSkipVerify: config.TLSInsecure,
	})
	return NewIssuer(config, restyClient)
}

func NewCacheFromConfig(config Config, store Store, issuer Issuer, logger *zap.SugaredLogger) *Cache {
	return NewCache(store, issuer, clock.New(), config.TTL, logger)
}
