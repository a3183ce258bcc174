package batch

import (
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/redcap"
	"github.com/susom/smartdata-worker/smartdata"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	NewConfig,
	NewRateLimiter,
	projection.NewProjector,
	newRecordProjector,
	newRecordSource,
	newSmartDataAPI,
	NewOrchestrator,
)

func newRecordProjector(projector *projection.Projector) RecordProjector {
	return projector
}

func newRecordSource(source *redcap.Source) RecordSource {
	return source
}

func newSmartDataAPI(client *smartdata.Client) SmartDataAPI {
	return client
}
