// Package scheduler runs the bot's periodic jobs on UTC cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fathima-sithara/jungbot/internal/rankcache"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Jobs is the work the scheduler drives.
type Jobs interface {
	Maintenance() rankcache.Stats
	OffFromWork(ctx context.Context, now time.Time) (int, error)
	Archive(ctx context.Context) (int, error)
}

type Specs struct {
	Maintenance string
	OffFromWork string
	Archive     string // empty disables archiving
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New registers every entry of specs. ctx bounds the work each run does.
func New(ctx context.Context, specs Specs, jobs Jobs, log *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
	)

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{"maintenance", specs.Maintenance, func() { jobs.Maintenance() }},
		{"off_from_work", specs.OffFromWork, func() {
			if _, err := jobs.OffFromWork(ctx, time.Now()); err != nil {
				log.Error("off-from-work run failed", zap.Error(err))
			}
		}},
		{"archive", specs.Archive, func() {
			n, err := jobs.Archive(ctx)
			if err != nil {
				log.Error("archive run failed", zap.Error(err))
				return
			}
			log.Info("archive run done", zap.Int("groups", n))
		}},
	}

	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := c.AddFunc(e.spec, e.run); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", e.name, e.spec, err)
		}
		log.Info("scheduled", zap.String("job", e.name), zap.String("spec", e.spec))
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running ones until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
