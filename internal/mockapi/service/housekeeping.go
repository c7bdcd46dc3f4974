package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
)

// HousekeepingService purges expired refresh tokens on a fixed interval.
// Rotation leaves one dead row behind per refresh, so a mock that runs for
// a while would otherwise keep every token it ever issued.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewHousekeepingService returns a stopped service; interval <= 0 means hourly.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{Store: st, Logger: logger, Interval: interval}
}

// Start runs a sweep now and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.Run(ctx)
	}()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop cancels the worker and waits for a running sweep. Safe to call more
// than once, and before Start.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		s.Logger.Info("housekeeping stopped")
	})
}

// Run sweeps until ctx is done.
func (s *HousekeepingService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

// sweep returns how many refresh tokens were removed.
func (s *HousekeepingService) sweep(ctx context.Context, now time.Time) int {
	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("refresh token sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.Logger.Debug("refresh token sweep", "deleted", n)
	}
	return n
}
