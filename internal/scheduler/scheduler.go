// Package scheduler drives periodic checks of the configured targets and
// forwards detected changes to notification dispatch.
//
// Each target gets its own cron entry wrapped in SkipIfStillRunning, which
// gives the per-target serialization the detector requires while letting
// different targets run concurrently.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raysh454/kanshi/internal/interfaces"
	"github.com/raysh454/kanshi/internal/monitor"
	"github.com/raysh454/kanshi/internal/notify"
)

// Scheduler owns the cron loop over a fixed target set.
type Scheduler struct {
	detector *monitor.Detector
	notifier *notify.Manager
	targets  []*monitor.Target

	// defaultInterval applies to targets without their own interval.
	defaultInterval time.Duration

	logger interfaces.Logger
}

func New(detector *monitor.Detector, notifier *notify.Manager, targets []*monitor.Target, defaultInterval time.Duration, logger interfaces.Logger) *Scheduler {
	return &Scheduler{
		detector:        detector,
		notifier:        notifier,
		targets:         targets,
		defaultInterval: defaultInterval,
		logger:          logger.With(interfaces.Field{Key: "component", Value: "scheduler"}),
	}
}

// interval resolves the effective check interval for a target.
func (s *Scheduler) interval(t *monitor.Target) time.Duration {
	if t.Interval > 0 {
		return time.Duration(t.Interval) * time.Second
	}
	return s.defaultInterval
}

// RunOnce checks every target sequentially. One target's failure never
// aborts the rest of the batch.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("running check", interfaces.Field{Key: "targets", Value: len(s.targets)})
	for _, t := range s.targets {
		if ctx.Err() != nil {
			return
		}
		s.checkTarget(ctx, t)
	}
}

// Run performs an initial pass over all targets, then runs the cron loop
// until ctx is cancelled. In-flight checks finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{s.logger}),
	))

	for _, t := range s.targets {
		target := t
		spec := fmt.Sprintf("@every %s", s.interval(target))
		if _, err := c.AddFunc(spec, func() { s.checkTarget(ctx, target) }); err != nil {
			return fmt.Errorf("schedule target %q: %w", target.Name, err)
		}
		s.logger.Info("target scheduled",
			interfaces.Field{Key: "target", Value: target.Name},
			interfaces.Field{Key: "url", Value: target.URL},
			interfaces.Field{Key: "interval", Value: s.interval(target).String()})
	}

	s.RunOnce(ctx)

	c.Start()
	<-ctx.Done()

	s.logger.Info("stopping scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) checkTarget(ctx context.Context, t *monitor.Target) {
	change, err := s.detector.Check(ctx, t)
	if err != nil {
		s.logger.Error("check failed",
			interfaces.Field{Key: "target", Value: t.Name},
			interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	if change == nil {
		return
	}
	s.notifier.NotifyAll(ctx, change)
}

// cronLogger bridges cron's logging interface onto ours. Skip messages from
// SkipIfStillRunning land here as Info.
type cronLogger struct {
	logger interfaces.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug(msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(kvFields(keysAndValues), interfaces.Field{Key: "error", Value: err.Error()})
	c.logger.Error(msg, fields...)
}

func kvFields(keysAndValues []interface{}) []interfaces.Field {
	fields := make([]interfaces.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, interfaces.Field{
			Key:   fmt.Sprint(keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
