package scheduler_test

import (
	"context"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/scheduler"
	"github.com/susom/smartdata-worker/store"
	"go.uber.org/zap"
	"sync/atomic"
	"time"
)

type countingRunner struct {
	runs atomic.Int32
}

func (c *countingRunner) Run(_ context.Context) batch.Report {
	n := c.runs.Add(1)
	return batch.Report{RunId: "run", Written: int(n)}
}

type countingResetter struct {
	resets atomic.Int32
}

func (c *countingResetter) Reset() {
	c.resets.Add(1)
}

var _ = Describe("Scheduler", func() {
	var ctx context.Context
	var runner *countingRunner
	var tokens *countingResetter
	var locker store.Locker
	var config scheduler.Config

	BeforeEach(func() {
		ctx = context.Background()
		runner = &countingRunner{}
		tokens = &countingResetter{}
		locker = store.NewLocalLocker()
		config = scheduler.Config{Schedule: "@every 1s", Enabled: true, LockTTL: time.Minute}
	})

	It("resets the token before each run and keeps the last report", func() {
		s := scheduler.NewScheduler(config, runner, tokens, locker, zap.NewNop().Sugar())

		_, ok := s.LastReport()
		Expect(ok).To(BeFalse())

		report, ran := s.RunOnce(ctx)
		Expect(ran).To(BeTrue())
		Expect(report.Written).To(Equal(1))
		Expect(tokens.resets.Load()).To(Equal(int32(1)))

		last, ok := s.LastReport()
		Expect(ok).To(BeTrue())
		Expect(last.Written).To(Equal(1))
	})

	It("skips the run when another process holds the lock", func() {
		_, err := locker.TryLock(ctx, "smartdata:sync:leader", time.Minute)
		Expect(err).ToNot(HaveOccurred())

		s := scheduler.NewScheduler(config, runner, tokens, locker, zap.NewNop().Sugar())
		_, ran := s.RunOnce(ctx)
		Expect(ran).To(BeFalse())
		Expect(runner.runs.Load()).To(Equal(int32(0)))
	})

	It("releases the lock after a run", func() {
		s := scheduler.NewScheduler(config, runner, tokens, locker, zap.NewNop().Sugar())
		_, ran := s.RunOnce(ctx)
		Expect(ran).To(BeTrue())

		_, ran = s.RunOnce(ctx)
		Expect(ran).To(BeTrue())
		Expect(runner.runs.Load()).To(Equal(int32(2)))
	})

	It("runs on schedule until stopped", func() {
		s := scheduler.NewScheduler(config, runner, tokens, locker, zap.NewNop().Sugar())
		s.Start(ctx)
		Eventually(func() int32 { return runner.runs.Load() }, 3*time.Second).Should(BeNumerically(">=", 1))
		s.Stop()
	})

	It("doesn't schedule runs when disabled", func() {
		config.Enabled = false
		s := scheduler.NewScheduler(config, runner, tokens, locker, zap.NewNop().Sugar())
		s.Start(ctx)
		Consistently(func() int32 { return runner.runs.Load() }, 1500*time.Millisecond).Should(BeZero())
		s.Stop()
	})
})
