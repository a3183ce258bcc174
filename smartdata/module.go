package smartdata

import (
	"github.com/susom/smartdata-worker/token"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	NewConfig,
	NewClientFromConfig,
)

func NewClientFromConfig(config Config, cache *token.Cache) *Client {
	return NewClient(config, cache)
}
