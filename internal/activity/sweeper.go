package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"academia/internal/metrics"
)

// Expirer deletes rejected records past their expiry.
type Expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper physically removes rejected records once their retention ends.
// Running it repeatedly is harmless.
type Sweeper struct {
	store Expirer
	log   *zap.Logger
	now   func() time.Time
}

func NewSweeper(store Expirer, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{store: store, log: log, now: time.Now}
}

// Sweep runs one pass and returns the number of deleted records.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.RejectedSwept.Add(float64(n))
		s.log.Info("swept expired rejected records", zap.Int64("deleted", n))
	}
	return n, nil
}

// Run sweeps every interval until ctx is cancelled. Errors are logged and the
// loop continues.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
