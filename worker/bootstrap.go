package worker

import (
	"context"
	"github.com/susom/smartdata-worker/audit"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/redcap"
	"github.com/susom/smartdata-worker/scheduler"
	"github.com/susom/smartdata-worker/settings"
	"github.com/susom/smartdata-worker/smartdata"
	"github.com/susom/smartdata-worker/store"
	"github.com/susom/smartdata-worker/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"net/http"
)

var dependencies = fx.Provide(
	configProvider,
	loggerProvider,
	healthCheckServerProvider,
)

var Modules = []fx.Option{
	dependencies,
	store.Module,
	token.Module,
	smartdata.Module,
	redcap.Module,
	settings.Module,
	audit.Module,
	batch.Module,
	scheduler.Module,
}

// New returns the long running worker which syncs on schedule and serves the health check
func New() *fx.App {
	invokes := fx.Invoke(
		startScheduler,
		startHealthCheckServer,
	)
	return fx.New(append(Modules, invokes)...)
}

type Components struct {
	fx.In

	Scheduler         *scheduler.Scheduler
	HealthCheckServer *http.Server
	Logger            *zap.SugaredLogger
	Lifecycle         fx.Lifecycle
	Shutdowner        fx.Shutdowner
}

func startScheduler(components Components) {
	components.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// The start context expires once the app has started
			components.Scheduler.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			components.Scheduler.Stop()
			return nil
		},
	})
}
