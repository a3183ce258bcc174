package store

import (
	"context"
	"fmt"
	"github.com/avast/retry-go"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"time"
)

var Module = fx.Provide(
	NewConfig,
	NewClients,
	NewLocker,
)

var (
	DefaultAttempts  = uint(5)
	DefaultDelay     = 2 * time.Second
	DefaultDelayType = retry.BackOffDelay
)

type Config struct {
	RedisAddress  string `envconfig:"SMARTDATA_REDIS_ADDRESS"`
	RedisPassword string `envconfig:"SMARTDATA_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"SMARTDATA_REDIS_DB" default:"0"`
	MongoURI      string `envconfig:"SMARTDATA_MONGO_URI"`
	MongoDatabase string `envconfig:"SMARTDATA_MONGO_DATABASE" default:"smartdata"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// Clients holds the optional shared storage clients. A nil client means the backend is not configured.
type Clients struct {
	Redis redis.UniversalClient
	Mongo *mongo.Database
}

func NewClients(config Config, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (*Clients, error) {
	clients := &Clients{}

	if config.RedisAddress != "" {
		clients.Redis = redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
	} else {
		logger.Info("redis is not configured, tokens and locks are local to this process")
	}

	var mongoClient *mongo.Client
	if config.MongoURI != "" {
		var err error
		mongoClient, err = mongo.NewClient(options.Client().ApplyURI(config.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("unable to create mongo client: %w", err)
		}
		clients.Mongo = mongoClient.Database(config.MongoDatabase)
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if mongoClient != nil {
				if err := mongoClient.Connect(ctx); err != nil {
					return fmt.Errorf("unable to connect to mongo: %w", err)
				}
			}
			return clients.Ping(ctx, logger)
		},
		OnStop: func(ctx context.Context) error {
			if clients.Redis != nil {
				if err := clients.Redis.Close(); err != nil {
					logger.Warnw("unable to close redis client", zap.Error(err))
				}
			}
			if mongoClient != nil {
				return mongoClient.Disconnect(ctx)
			}
			return nil
		},
	})

	return clients, nil
}

// Ping checks the configured backends are reachable, retrying with a backoff
func (c *Clients) Ping(ctx context.Context, logger *zap.SugaredLogger) error {
	pingFn := func() error {
		if c.Redis != nil {
			if err := c.Redis.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("unable to ping redis: %w", err)
			}
		}
		if c.Mongo != nil {
			if err := c.Mongo.Client().Ping(ctx, nil); err != nil {
				return fmt.Errorf("unable to ping mongo: %w", err)
			}
		}
		return nil
	}

	return retry.Do(
		pingFn,
		retry.Context(ctx),
		retry.Attempts(DefaultAttempts),
		retry.Delay(DefaultDelay),
		retry.DelayType(DefaultDelayType),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnw("storage is not reachable yet", "attempt", n+1, zap.Error(err))
		}),
	)
}
