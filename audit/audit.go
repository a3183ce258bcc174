package audit

import (
	"context"
	"errors"
	"github.com/kelseyhightower/envconfig"
	"github.com/susom/smartdata-worker/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"time"
)

var Module = fx.Provide(NewConfig, NewSink)

const OutcomeWritten = "written"

// Entry describes what happened to a single SmartData element of a record. Values are never recorded.
type Entry struct {
	Time      time.Time `json:"time" bson:"time"`
	RunId     string    `json:"runId" bson:"runId"`
	ProjectId string    `json:"projectId" bson:"projectId"`
	RecordId  string    `json:"recordId" bson:"recordId"`
	EntityId  string    `json:"entityId" bson:"entityId"`
	Target    string    `json:"target" bson:"target"`
	Outcome   string    `json:"outcome" bson:"outcome"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
}

type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

type Config struct {
	Collection string `envconfig:"SMARTDATA_AUDIT_COLLECTION"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// NewSink always logs audit entries and additionally persists them in mongo when a collection is configured
func NewSink(config Config, clients *store.Clients, logger *zap.SugaredLogger) Sink {
	logSink := NewLogSink(logger)
	if config.Collection == "" || clients.Mongo == nil {
		logger.Info("audit persistence is disabled")
		return logSink
	}

	return NewMultiSink(logSink, NewMongoSink(clients.Mongo.Collection(config.Collection)))
}

type LogSink struct {
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Record(_ context.Context, entry Entry) error {
	fields := []interface{}{
		"runId", entry.RunId,
		"projectId", entry.ProjectId,
		"recordId", entry.RecordId,
		"entityId", entry.EntityId,
		"target", entry.Target,
	}

	switch entry.Outcome {
	case OutcomeWritten:
		l.logger.Infow("smartdata value written", fields...)
	default:
		fields = append(fields, "outcome", entry.Outcome)
		if entry.Reason != "" {
			fields = append(fields, "reason", entry.Reason)
		}
		l.logger.Infow("smartdata value not written", fields...)
	}
	return nil
}

type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Record delivers the entry to every sink even when one of them fails
func (m *MultiSink) Record(ctx context.Context, entry Entry) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
