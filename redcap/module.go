package redcap

import "go.uber.org/fx"

var Module = fx.Provide(
	NewConfig,
	NewClient,
	NewSource,
)
