// Package scheduler fires the local run on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. A tick that arrives while the previous run is
// still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	spec     string
	job      cron.Job
	logger   *zap.Logger
}

// New validates spec (standard five-field cron or a descriptor like "@every 6h").
func New(ctx context.Context, spec string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	l := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(l)),
		schedule: schedule,
		spec:     spec,
		logger:   logger,
	}
	s.job = cron.NewChain(cron.SkipIfStillRunning(l), cron.Recover(l)).Then(cron.FuncJob(func() {
		s.logger.Info("⏰ scheduled run starting")
		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("❌ scheduled run failed", zap.Error(err))
			return
		}
		s.logger.Info("✅ scheduled run finished", zap.Duration("took", time.Since(start)))
	}))
	return s, nil
}

// Next is when the schedule fires after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is done, then waits for an in-flight run to finish.
func (s *Scheduler) Run(ctx context.Context, runNow bool) {
	s.cron.Schedule(s.schedule, s.job)
	s.cron.Start()
	s.logger.Info("🗓️ scheduler started", zap.String("spec", s.spec), zap.Time("next", s.Next(time.Now())))

	if runNow {
		go s.job.Run()
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("🛑 scheduler stopped")
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
