// Package scheduler runs the periodic refresh jobs of the price service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"runetick/config"
	"runetick/internal/market"
	"runetick/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// Market is the part of the market service refreshed on a schedule.
type Market interface {
	RefreshLatest(ctx context.Context) (map[string]market.Quote, error)
	RefreshMappings(ctx context.Context) (int, error)
	RefreshVolumes(ctx context.Context) (int, error)
}

// Broadcaster receives every refreshed quote set.
type Broadcaster interface {
	Broadcast(ctx context.Context, quotes map[string]market.Quote) error
}

// Sweeper drops expired entries of an in-process cache.
type Sweeper interface {
	Sweep() int
}

type Scheduler struct {
	cron    *cron.Cron
	market  Market
	hub     Broadcaster
	sweeper Sweeper // nil when the cache expires entries itself
	metrics *metrics.Metrics
	log     *zap.Logger
	ctx     context.Context
}

// New creates a scheduler whose jobs run with seconds precision in UTC.
// Jobs derive their contexts from ctx.
func New(ctx context.Context, m Market, hub Broadcaster, sweeper Sweeper, met *metrics.Metrics, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		market:  m,
		hub:     hub,
		sweeper: sweeper,
		metrics: met,
		log:     log.Named("scheduler"),
		ctx:     ctx,
	}
}

// Register adds every job with a non-empty expression.
func (s *Scheduler) Register(cfg config.SchedulerConfig) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"latest", cfg.Latest, s.refreshLatest},
		{"mappings", cfg.Mappings, s.refreshMappings},
		{"volumes", cfg.Volumes, s.refreshVolumes},
		{"sweep", cfg.Sweep, s.sweep},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if job.name == "sweep" && s.sweeper == nil {
			continue
		}
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(job.spec, func() { s.runJob(name, run) }); err != nil {
			return fmt.Errorf("register %s job: %w", name, err)
		}
		s.log.Info("job registered", zap.String("job", name), zap.String("spec", job.spec))
	}
	return nil
}

// WarmUp fills the reference caches once so the first requests do not wait on upstream.
func (s *Scheduler) WarmUp() {
	s.runJob("mappings", s.refreshMappings)
	s.runJob("volumes", s.refreshVolumes)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := run(ctx)
	s.metrics.JobRuns.WithLabelValues(name, metrics.Outcome(err)).Inc()
	if err != nil {
		s.log.Warn("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Debug("job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) refreshLatest(ctx context.Context) error {
	quotes, err := s.market.RefreshLatest(ctx)
	if err != nil {
		return err
	}
	return s.hub.Broadcast(ctx, quotes)
}

func (s *Scheduler) refreshMappings(ctx context.Context) error {
	n, err := s.market.RefreshMappings(ctx)
	if err != nil {
		return err
	}
	s.log.Info("mappings refreshed", zap.Int("items", n))
	return nil
}

func (s *Scheduler) refreshVolumes(ctx context.Context) error {
	n, err := s.market.RefreshVolumes(ctx)
	if err != nil {
		return err
	}
	s.log.Info("volumes refreshed", zap.Int("items", n))
	return nil
}

func (s *Scheduler) sweep(context.Context) error {
	if n := s.sweeper.Sweep(); n > 0 {
		s.log.Debug("cache swept", zap.Int("expired", n))
	}
	return nil
}
