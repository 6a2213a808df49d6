package services

import (
	"context"
	"sync"
	"time"

	"velum-go/internal/config"

	"go.uber.org/zap"
)

// jobTimeout bounds a single run of a background job.
const jobTimeout = 5 * time.Minute

// Scheduler runs the periodic analysis batch and the overdue sweep.
type Scheduler struct {
	log      *zap.Logger
	analysis *AnalysisService
	tasks    *TaskService
	ai       Assistant
	conf     func() config.SchedulerConfig
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewScheduler builds the scheduler. conf is read when Start is called.
func NewScheduler(log *zap.Logger, analysis *AnalysisService, tasks *TaskService, ai Assistant, conf func() config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		log:      log,
		analysis: analysis,
		tasks:    tasks,
		ai:       ai,
		conf:     conf,
		now:      time.Now,
	}
}

// Start runs each job in its own goroutine until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	conf := s.conf()
	s.log.Info("Starting background scheduler...",
		zap.Duration("analysisInterval", conf.AnalysisInterval),
		zap.Duration("overdueInterval", conf.OverdueInterval),
	)
	s.every(ctx, conf.AnalysisInterval, func(ctx context.Context) { s.runAnalysis(ctx, conf.AnalysisBatchSize) })
	s.every(ctx, conf.OverdueInterval, s.runOverdueSweep)
}

// Wait blocks until every job goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) every(ctx context.Context, interval time.Duration, job func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
				job(runCtx)
				cancel()
			}
		}
	}()
}

func (s *Scheduler) runAnalysis(ctx context.Context, batchSize int) {
	if !s.ai.Configured(ctx) {
		s.log.Debug("AI not configured, skipping analysis batch")
		return
	}
	if _, err := s.analysis.RunBatch(ctx, batchSize); err != nil {
		s.log.Error("Analysis batch failed", zap.Error(err))
	}
}

func (s *Scheduler) runOverdueSweep(ctx context.Context) {
	s.log.Debug("Running overdue sweep", zap.String("utc_time", s.now().UTC().Format("15:04")))
	if _, err := s.tasks.MarkOverdue(ctx, s.now()); err != nil {
		s.log.Error("Failed to mark overdue tasks", zap.Error(err))
	}
}
