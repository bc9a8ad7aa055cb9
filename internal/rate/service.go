package rate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/ahmethakanbesel/ecb-exchange/internal/metrics"
)

type Service struct {
	repo       Repository
	source     Source
	sourceName string
	now        func() time.Time
	metrics    *metrics.Metrics
	flight     singleflight.Group
}

func NewService(repo Repository, source Source, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		source:     source,
		sourceName: "ecb",
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSourceName sets the source identifier recorded in cached record metadata.
func WithSourceName(name string) Option {
	return func(s *Service) { s.sourceName = name }
}

// Fetch returns the snapshot to serve right now.
func (s *Service) Fetch(ctx context.Context) (Snapshot, error) {
	return s.FetchAt(ctx, s.now())
}

// FetchAt returns the cached snapshot for now's cache key when the freshness
// policy allows it, and otherwise fetches, persists and returns a new one.
// Concurrent misses on the same key share a single remote call.
func (s *Service) FetchAt(ctx context.Context, now time.Time) (Snapshot, error) {
	key := CacheKey(now)

	record, err := s.repo.GetLatest(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: load cached snapshot %s: %w", ErrTransport, key, err)
	}

	decision := Decide(now, record)
	s.metrics.CacheDecision(decision.String())
	if decision == Hit {
		slog.Debug("serving cached snapshot", "key", key, "fetchedAt", record.FetchTimestamp)
		return record.Snapshot, nil
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), key, now)
	})
	if err != nil {
		return Snapshot{}, err
	}
	if shared {
		slog.Debug("joined in-flight snapshot fetch", "key", key)
	}
	return v.(Snapshot), nil
}

func (s *Service) refresh(ctx context.Context, key string, now time.Time) (Snapshot, error) {
	start := time.Now()
	snapshot, err := s.source.FetchSnapshot(ctx)
	s.metrics.SourceFetch(err, time.Since(start))
	if err != nil {
		slog.Error("failed to fetch exchange rates", "key", key, "error", err)
		return Snapshot{}, err
	}

	record := NewCachedRecord(snapshot, now, key)
	record.Metadata["source"] = s.sourceName
	record.Metadata["fetch_id"] = uuid.NewString()
	record.Metadata["rates_count"] = strconv.Itoa(len(snapshot.Rates))

	if err := s.repo.Store(ctx, record); err != nil {
		return Snapshot{}, fmt.Errorf("%w: store snapshot %s: %w", ErrTransport, key, err)
	}

	slog.Info("stored exchange rate snapshot", "key", key, "rates", len(snapshot.Rates))
	return snapshot, nil
}

// Convert returns the number of units of to per one unit of from.
func (s *Service) Convert(ctx context.Context, from, to string) (float64, error) {
	from, to, err := normalizePair(from, to)
	if err != nil {
		s.metrics.Conversion(err)
		return 0, err
	}

	snapshot, err := s.Fetch(ctx)
	if err != nil {
		s.metrics.Conversion(err)
		return 0, err
	}

	r, err := Triangulate(snapshot, from, to)
	s.metrics.Conversion(err)
	return r, err
}

// ConvertBatch converts every request against one snapshot. The first failing
// item aborts the batch.
func (s *Service) ConvertBatch(ctx context.Context, reqs []ConversionRequest) ([]Conversion, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no conversions requested", ErrInvalidArguments)
	}

	normalized := make([]ConversionRequest, len(reqs))
	for i, req := range reqs {
		from, to, err := normalizePair(req.From, req.To)
		if err != nil {
			return nil, fmt.Errorf("conversion %d: %w", i, err)
		}
		if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
			return nil, fmt.Errorf("%w: conversion %d: amount must be finite", ErrInvalidArguments, i)
		}
		normalized[i] = ConversionRequest{From: from, Amount: req.Amount, To: to}
	}

	snapshot, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Conversion, 0, len(normalized))
	for _, req := range normalized {
		r, err := Triangulate(snapshot, req.From, req.To)
		s.metrics.Conversion(err)
		if err != nil {
			return nil, err
		}
		results = append(results, Conversion{
			From:            req.From,
			To:              req.To,
			Rate:            r,
			Amount:          req.Amount,
			ConvertedAmount: decimal.NewFromFloat(req.Amount).Mul(decimal.NewFromFloat(r)).InexactFloat64(),
		})
	}
	return results, nil
}

// HealthCheck reports whether the persistence backend is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: health check: %w", ErrTransport, err)
	}
	return nil
}

// Triangulate computes the from/to cross rate through BaseCurrency.
func Triangulate(snapshot Snapshot, from, to string) (float64, error) {
	switch {
	case from == to:
		if from != BaseCurrency {
			if _, err := snapshot.Lookup(from); err != nil {
				return 0, err
			}
		}
		return 1.0, nil
	case to == BaseCurrency:
		return snapshot.Lookup(from)
	case from == BaseCurrency:
		rt, err := lookupDivisor(snapshot, to)
		if err != nil {
			return 0, err
		}
		return 1.0 / rt, nil
	default:
		rf, err := snapshot.Lookup(from)
		if err != nil {
			return 0, err
		}
		rt, err := lookupDivisor(snapshot, to)
		if err != nil {
			return 0, err
		}
		return rf / rt, nil
	}
}

func lookupDivisor(snapshot Snapshot, code string) (float64, error) {
	r, err := snapshot.Lookup(code)
	if err != nil {
		return 0, err
	}
	if r == 0 {
		return 0, fmt.Errorf("%w: zero rate for %s", ErrMalformedResponse, code)
	}
	return r, nil
}

func normalizePair(from, to string) (string, string, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return "", "", fmt.Errorf("%w: currency codes must not be empty", ErrInvalidArguments)
	}
	return from, to, nil
}
