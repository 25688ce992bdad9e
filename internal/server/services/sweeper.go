package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

// Sweeper periodically deletes refresh token records whose expiry lies
// further in the past than the retention window.
type Sweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	retention   time.Duration
	now         func() time.Time
	logger      logging.Logger
}

func NewSweeper(db *sql.DB, m repomanager.RepositoryManager, interval, retention time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		db:          db,
		repomanager: m,
		interval:    interval,
		retention:   retention,
		now:         time.Now,
		logger:      logger,
	}
}

// SweepOnce removes expired records once and returns how many were deleted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repomanager.RefreshTokens(s.db).SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "expired refresh tokens swept", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error(ctx, "refresh token sweep failed", "error", err)
			}
		}
	}
}
