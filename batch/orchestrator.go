package batch

import (
	"context"
	"errors"
	"fmt"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/susom/smartdata-worker/audit"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/settings"
	"github.com/susom/smartdata-worker/smartdata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"strings"
)

var errUnverifiedValue = errors.New("unable to verify current value")

// RecordProjector turns a record into the display values of its SmartData targets
type RecordProjector interface {
	Project(record projection.Record, fieldMaps []projection.FieldMap, metadata projection.MetadataLookup) *projection.Projection
}

// RecordSource provides the data dictionary and the records of a project
type RecordSource interface {
	Dictionary(ctx context.Context, project settings.ProjectSettings) (projection.Dictionary, string, error)
	Records(ctx context.Context, project settings.ProjectSettings, dictionary projection.Dictionary, recordIdField string) ([]projection.Record, error)
}

type Orchestrator struct {
	config      Config
	settings    settings.Store
	source      RecordSource
	smartData   SmartDataAPI
	projector   RecordProjector
	audit       audit.Sink
	rateLimiter *RateLimiter
	clock       clock.Clock
	logger      *zap.SugaredLogger
}

func NewOrchestrator(
	config Config,
	settingsStore settings.Store,
	source RecordSource,
	smartData SmartDataAPI,
	projector RecordProjector,
	sink audit.Sink,
	rateLimiter *RateLimiter,
	logger *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		config:      config,
		settings:    settingsStore,
		source:      source,
		smartData:   smartData,
		projector:   projector,
		audit:       sink,
		rateLimiter: rateLimiter,
		clock:       clock.New(),
		logger:      logger,
	}
}

// Run syncs all enabled projects. Failures of a project, record or field never stop the run,
// they are logged, audited and counted in the report.
func (o *Orchestrator) Run(ctx context.Context) Report {
	runId := uuid.NewString()
	builder := newReportBuilder(runId, o.clock.Now())
	logger := o.logger.With("runId", runId)

	projects, err := o.settings.EnabledProjects(ctx)
	if err != nil {
		logger.Errorw("unable to load project settings", zap.Error(err))
		builder.update(func(report *Report) {
			report.Error = err.Error()
		})
		return builder.finish(o.clock.Now())
	}

	logger.Infow("starting smartdata sync", "projects", len(projects))

	concurrency := int64(o.config.ProjectConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(concurrency)
	eg := errgroup.Group{}

	for _, project := range projects {
		if err := sem.Acquire(ctx, 1); err != nil {
			logger.Warnw("stopping sync", zap.Error(err))
			break
		}

		project := project
		eg.Go(func() error {
			defer sem.Release(1)
			o.syncProject(ctx, runId, project, builder, logger.With("projectId", project.Id))
			return nil
		})
	}
	_ = eg.Wait()

	report := builder.finish(o.clock.Now())
	logger.Infow("smartdata sync completed",
		"projects", report.Projects,
		"records", report.Records,
		"written", report.Written,
		"skippedNonEmpty", report.SkippedNonEmpty,
		"skippedNoValue", report.SkippedNoValue,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report
}

func (o *Orchestrator) syncProject(ctx context.Context, runId string, project settings.ProjectSettings, builder *reportBuilder, logger *zap.SugaredLogger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("project sync panicked", "panic", fmt.Sprint(r))
			builder.update(func(report *Report) { report.ProjectsFailed++ })
		}
	}()

	if project.IdentifierField == "" {
		logger.Warnw("skipping project without identifier field")
		builder.update(func(report *Report) { report.ProjectsSkipped++ })
		return
	}

	builder.update(func(report *Report) { report.Projects++ })

	dictionary, recordIdField, err := o.source.Dictionary(ctx, project)
	if err != nil {
		logger.Errorw("unable to fetch data dictionary", zap.Error(err))
		builder.update(func(report *Report) { report.ProjectsFailed++ })
		return
	}

	records, err := o.source.Records(ctx, project, dictionary, recordIdField)
	if err != nil {
		logger.Errorw("unable to fetch records", zap.Error(err))
		builder.update(func(report *Report) { report.ProjectsFailed++ })
		return
	}

	logger.Infow("syncing project records", "records", len(records))
	for _, record := range records {
		if ctx.Err() != nil {
			logger.Warnw("stopping project sync", zap.Error(ctx.Err()))
			return
		}
		builder.update(func(report *Report) { report.Records++ })
		o.syncRecord(ctx, runId, project, dictionary, record, builder, logger.With("recordId", record.Id))
	}
}

func (o *Orchestrator) syncRecord(ctx context.Context, runId string, project settings.ProjectSettings, dictionary projection.Dictionary, record projection.Record, builder *reportBuilder, logger *zap.SugaredLogger) {
	entityId := strings.TrimSpace(record.Value(project.IdentifierField).ScalarValue())
	if entityId == "" {
		logger.Debugw("skipping record without identifier", "identifierField", project.IdentifierField)
		builder.update(func(report *Report) { report.RecordsWithoutIdentifier++ })
		return
	}

	values, projectionErr := o.projectRecord(record, project, dictionary, logger)

	seen := make(map[string]bool)
	for _, fieldMap := range project.FieldMaps {
		target := fieldMap.Target
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true

		result := Result{
			ProjectId: project.Id,
			RecordId:  record.Id,
			Target:    target,
		}

		if projectionErr != nil {
			result.Outcome = OutcomeFailed
			result.Reason = projectionErr.Error()
			builder.addResult(result)
			o.recordAudit(ctx, runId, entityId, result, logger)
			continue
		}

		value, ok := values.Get(target)
		if !ok {
			result.Outcome = OutcomeSkippedNoValue
			builder.addResult(result)
			continue
		}

		outcome, err := o.syncField(ctx, entityId, target, value)
		result.Outcome = outcome
		if err != nil {
			result.Reason = err.Error()
			logger.Warnw("unable to sync smartdata value", "target", target, zap.Error(err))
		} else {
			logger.Debugw("smartdata value synced", "target", target, "outcome", outcome)
		}
		builder.addResult(result)

		if outcome == OutcomeWritten || outcome == OutcomeFailed {
			o.recordAudit(ctx, runId, entityId, result, logger)
		}
	}
}

// projectRecord returns an error when the projection panics, all targets of the record then fail
func (o *Orchestrator) projectRecord(record projection.Record, project settings.ProjectSettings, dictionary projection.Dictionary, logger *zap.SugaredLogger) (values *projection.Projection, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("unable to project record", "panic", fmt.Sprint(r))
			values = nil
			err = fmt.Errorf("unable to project record: panic: %v", r)
		}
	}()
	return o.projector.Project(record, project.FieldMaps, dictionary), nil
}

// syncField writes the value only when the element has no value in the EHR
func (o *Orchestrator) syncField(ctx context.Context, entityId, target, value string) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	o.rateLimiter.WaitOrContinue()
	current, err := o.smartData.Read(ctx, entityId, target, smartdata.Options{})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("unable to read current value: %w", err)
	}
	existing, ok := current.CurrentValue(target)
	if !ok {
		return OutcomeFailed, errUnverifiedValue
	}
	if existing != "" {
		return OutcomeSkippedNonEmpty, nil
	}

	o.rateLimiter.WaitOrContinue()
	if _, err := o.smartData.Write(ctx, entityId, target, value, smartdata.Options{}); err != nil {
		return OutcomeFailed, fmt.Errorf("unable to write value: %w", err)
	}
	return OutcomeWritten, nil
}

func (o *Orchestrator) recordAudit(ctx context.Context, runId, entityId string, result Result, logger *zap.SugaredLogger) {
	entry := audit.Entry{
		Time:      o.clock.Now(),
		RunId:     runId,
		ProjectId: result.ProjectId,
		RecordId:  result.RecordId,
		EntityId:  entityId,
		Target:    result.Target,
		Outcome:   string(result.Outcome),
		Reason:    result.Reason,
	}
	if err := o.audit.Record(ctx, entry); err != nil {
		logger.Warnw("unable to record audit entry", "target", result.Target, zap.Error(err))
	}
}

// SetClock replaces the clock used for report and audit timestamps
func (o *Orchestrator) SetClock(clk clock.Clock) {
	o.clock = clk
}
