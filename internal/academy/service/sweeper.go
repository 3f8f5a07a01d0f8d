package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

// Sweeper periodically reconciles every owner with an outstanding
// activation request, so an approval flipped on the remote side lands
// locally even if the owner never logs back in.
type Sweeper struct {
	Reconciler *Reconciler
	Logger     *slog.Logger
	Interval   time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper creates a sweeper. If interval is 0 or negative, defaults to
// 10 minutes.
func NewSweeper(r *Reconciler, logger *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		Reconciler: r,
		Logger:     logger,
		Interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *Sweeper) Start() {
	go s.run()
	s.Logger.Info("reconciliation sweeper started", "interval", s.Interval)
}

// Stop gracefully shuts down the worker, waiting for an in-progress sweep.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("reconciliation sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()
	ctx = slogx.WithContext(ctx, s.Logger)

	visited, changed, err := s.Reconciler.SweepPending(ctx)
	if err != nil {
		s.Logger.Error("failed to list pending owners", "error", err)
		return
	}
	if visited == 0 {
		return
	}

	s.Logger.Info("reconciliation sweep completed",
		"owners", visited,
		"changed", changed,
	)
}
