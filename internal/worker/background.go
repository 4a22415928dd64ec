package worker

import (
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HandlerRegistrar subscribes event handlers to the dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// Drainer waits for queued tasks before releasing workers. *ants.Pool
// satisfies it.
type Drainer interface {
	ReleaseTimeout(timeout time.Duration) error
}

// BackgroundConfig lists the pieces started alongside the HTTP server.
// Every field is optional.
type BackgroundConfig struct {
	Notifications HandlerRegistrar
	Sweep         *PatternSweep
	SweepSchedule string
	Pool          Drainer
	Logger        *zap.Logger
}

// Background owns the notification subscriptions, the pattern sweep
// schedule and the learning pool for the life of the process.
type Background struct {
	scheduler *cron.Cron
	pool      Drainer
	logger    *zap.Logger
}

// StartBackground registers notification handlers and schedules the
// pattern sweep. An empty schedule disables the sweep.
func StartBackground(cfg BackgroundConfig) (*Background, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Background{pool: cfg.Pool, logger: logger.Named("background")}

	if cfg.Notifications != nil {
		cfg.Notifications.RegisterHandlers()
	}
	if cfg.Sweep != nil && cfg.SweepSchedule != "" {
		scheduler, err := cfg.Sweep.Start(cfg.SweepSchedule)
		if err != nil {
			return nil, err
		}
		b.scheduler = scheduler
		b.logger.Info("pattern sweep scheduled", zap.String("schedule", cfg.SweepSchedule))
	}
	return b, nil
}

// Stop waits for a running sweep, then drains the learning pool for at
// most timeout.
func (b *Background) Stop(timeout time.Duration) {
	if b == nil {
		return
	}
	if b.scheduler != nil {
		<-b.scheduler.Stop().Done()
	}
	if b.pool == nil {
		return
	}
	if err := b.pool.ReleaseTimeout(timeout); err != nil && !errors.Is(err, ants.ErrPoolClosed) {
		b.logger.Warn("learning pool drain timed out", zap.Error(err))
	}
}
