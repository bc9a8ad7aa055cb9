package rate

import (
	"context"
	"log/slog"
	"time"
)

// Fetcher is the part of Service the refresher drives.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Refresher periodically asks the service for the current snapshot so the
// cache is warmed once the daily rates are published.
type Refresher struct {
	fetcher  Fetcher
	interval time.Duration
	notify   chan struct{}
}

func NewRefresher(fetcher Fetcher, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{
		fetcher:  fetcher,
		interval: interval,
		notify:   make(chan struct{}, 1),
	}
}

// Notify triggers an immediate refresh. Non-blocking.
func (r *Refresher) Notify() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every tick or notification until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-r.notify:
		case <-ticker.C:
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snapshot, err := r.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return // shutting down
		}
		slog.Error("refresher: fetch snapshot", "error", err)
		return
	}
	slog.Debug("refresher: snapshot current", "rates", len(snapshot.Rates), "capturedAt", snapshot.Timestamp)
}
