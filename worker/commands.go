package worker

import (
	"context"
	"fmt"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/scheduler"
	"github.com/susom/smartdata-worker/smartdata"
	"go.uber.org/fx"
)

// RunSync runs a single sync. The returned flag is false when another process was already syncing.
func RunSync(ctx context.Context) (batch.Report, bool, error) {
	var sched *scheduler.Scheduler
	var report batch.Report
	var ran bool

	err := runOnce(ctx, fx.Populate(&sched), func(ctx context.Context) error {
		report, ran = sched.RunOnce(ctx)
		return nil
	})
	return report, ran, err
}

// ReadValues returns the SmartData values of a patient, or all of them when smartDataID is empty
func ReadValues(ctx context.Context, entityID, smartDataID string) (*smartdata.Response, error) {
	var client *smartdata.Client
	var response *smartdata.Response

	err := runOnce(ctx, fx.Populate(&client), func(ctx context.Context) error {
		var err error
		response, err = client.Read(ctx, entityID, smartDataID, smartdata.Options{})
		return err
	})
	return response, err
}

func runOnce(ctx context.Context, populate fx.Option, fn func(ctx context.Context) error) error {
	opts := append([]fx.Option{}, Modules...)
	opts = append(opts, populate, fx.NopLogger)

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("unable to initialize: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("unable to start: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return fn(ctx)
}
