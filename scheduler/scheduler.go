package scheduler

import (
	"context"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/store"
	"github.com/susom/smartdata-worker/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"sync"
	"time"
)

var Module = fx.Provide(NewConfig, NewSchedulerFromModules)

const (
	// Ensures a single worker syncs at a time
	leaderLockKey   = "smartdata:sync:leader"
	defaultSchedule = "@daily"
)

type Config struct {
	Schedule string        `envconfig:"SMARTDATA_SYNC_SCHEDULE" default:"@daily"`
	Enabled  bool          `envconfig:"SMARTDATA_SYNC_ENABLED" default:"true"`
	LockTTL  time.Duration `envconfig:"SMARTDATA_SYNC_LOCK_TTL" default:"10m"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

type Runner interface {
	Run(ctx context.Context) batch.Report
}

// TokenResetter drops a process local token so each run starts from the shared token store
type TokenResetter interface {
	Reset()
}

type Scheduler struct {
	config Config
	runner Runner
	tokens TokenResetter
	locker store.Locker
	logger *zap.SugaredLogger

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	last *batch.Report
}

func NewSchedulerFromModules(config Config, orchestrator *batch.Orchestrator, cache *token.Cache, locker store.Locker, logger *zap.SugaredLogger) *Scheduler {
	return NewScheduler(config, orchestrator, cache, locker, logger)
}

func NewScheduler(config Config, runner Runner, tokens TokenResetter, locker store.Locker, logger *zap.SugaredLogger) *Scheduler {
	if config.LockTTL <= 0 {
		config.LockTTL = 10 * time.Minute
	}
	return &Scheduler{
		config: config,
		runner: runner,
		tokens: tokens,
		locker: locker,
		logger: logger,
	}
}

// Start schedules periodic runs. An invalid schedule falls back to daily runs.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info("scheduled sync is disabled")
		return
	}

	s.runCtx, s.cancel = context.WithCancel(ctx)
	c := cron.New()
	run := func() { s.RunOnce(s.runCtx) }
	if _, err := c.AddFunc(s.config.Schedule, run); err != nil {
		s.logger.Warnw("invalid sync schedule, falling back to daily", "schedule", s.config.Schedule, zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc(defaultSchedule, run)
	}

	c.Start()
	s.cron = c
	s.logger.Infow("scheduled sync started", "schedule", s.config.Schedule)
}

// Stop cancels the running sync and waits for it to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce runs a sync unless another process holds the leader lock. It returns false when the run was skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (batch.Report, bool) {
	lock, err := s.locker.TryLock(ctx, leaderLockKey, s.config.LockTTL)
	if err != nil {
		s.logger.Warnw("unable to acquire leader lock", zap.Error(err))
		return batch.Report{}, false
	}
	if lock == "" {
		s.logger.Info("sync is already running in another process")
		return batch.Report{}, false
	}
	defer func() {
		if err := s.locker.Unlock(context.Background(), leaderLockKey, lock); err != nil {
			s.logger.Warnw("unable to release leader lock", zap.Error(err))
		}
	}()

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go s.refreshLock(refreshCtx, lock)

	s.tokens.Reset()
	report := s.runner.Run(ctx)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	return report, true
}

// LastReport returns the report of the last completed run of this process
func (s *Scheduler) LastReport() (batch.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return batch.Report{}, false
	}
	return *s.last, true
}

func (s *Scheduler) refreshLock(ctx context.Context, lock string) {
	ticker := time.NewTicker(s.config.LockTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.locker.Refresh(ctx, leaderLockKey, lock, s.config.LockTTL); err != nil {
				s.logger.Warnw("unable to refresh leader lock", zap.Error(err))
			}
		}
	}
}
