package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/pipeline"
)

// Scheduler triggers pipeline runs on a fixed interval.
type Scheduler struct {
	pipeline   *pipeline.Pipeline
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current run
	mu         sync.Mutex         // protects cancelFunc
}

func New(p *pipeline.Pipeline, interval time.Duration) *Scheduler {
	return &Scheduler{
		pipeline: p,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	// Cancel any ongoing run first
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	if _, err := s.pipeline.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Warn("scheduled pipeline run cancelled", "module", "scheduler")
			return
		}
		logger.Error("scheduled pipeline run failed", "module", "scheduler", "error", err)
	}
}
