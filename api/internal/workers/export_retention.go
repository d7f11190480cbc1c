package workers

import (
	"context"
	"log/slog"
	"time"
)

// ExportPurger is implemented by the export audit repository.
type ExportPurger interface {
	PurgeExportsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExportRetention drops audit entries older than the retention window.
type ExportRetention struct {
	repo      ExportPurger
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewExportRetention(repo ExportPurger, logger *slog.Logger, interval, retention time.Duration) *ExportRetention {
	return &ExportRetention{
		repo:      repo,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Start runs one sweep immediately, then one per interval until ctx is done.
func (w *ExportRetention) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs a single purge pass.
func (w *ExportRetention) Sweep(ctx context.Context) {
	// 🛡️ Per-sweep Timeout: a stuck DELETE must not pin the worker
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := w.now().Add(-w.retention)
	n, err := w.repo.PurgeExportsBefore(sweepCtx, cutoff)
	if err != nil {
		w.logger.Error("Export retention sweep failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		w.logger.Info("Purged expired export records", slog.Int64("count", n), slog.Time("cutoff", cutoff))
	}
}
