package worker

import (
	"context"
	"errors"
	"github.com/goccy/go-json"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"net/http"
)

// ReportProvider returns the report of the last completed sync
type ReportProvider interface {
	LastReport() (batch.Report, bool)
}

type status struct {
	Status  string        `json:"status"`
	LastRun *batch.Report `json:"lastRun,omitempty"`
}

func NewStatusHandler(reports ReportProvider, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := status{Status: "ok"}
		if report, ok := reports.LastReport(); ok {
			response.LastRun = &report
		}

		body, err := json.Marshal(response)
		if err != nil {
			logger.Errorw("unable to marshal status", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func healthCheckServerProvider(config Config, sched *scheduler.Scheduler, logger *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", NewStatusHandler(sched, logger))

	return &http.Server{
		Addr:    config.HealthCheckAddress,
		Handler: mux,
	}
}

func startHealthCheckServer(components Components) {
	components.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := components.HealthCheckServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					components.Logger.Errorw("http listen and serve error", zap.Error(err))
					_ = components.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return components.HealthCheckServer.Shutdown(ctx)
		},
	})
}
