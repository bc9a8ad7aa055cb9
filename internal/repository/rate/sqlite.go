package rate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

var _ domain.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// snapshotJSON is the stored form of a snapshot.
type snapshotJSON struct {
	Rates     []domain.Rate `json:"rates"`
	Timestamp string        `json:"timestamp"`
}

func (r *Repository) Store(ctx context.Context, record domain.CachedRecord) error {
	snapshot, err := json.Marshal(snapshotJSON{
		Rates:     record.Snapshot.Rates,
		Timestamp: record.Snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var metadata sql.NullString
	if len(record.Metadata) > 0 {
		b, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	const query = `INSERT OR REPLACE INTO exchange_rates
		(source_identifier, fetch_time, snapshot_json, metadata_json)
		VALUES (?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query,
		record.CacheKey, record.FetchTimestamp.Unix(), string(snapshot), metadata); err != nil {
		return fmt.Errorf("store exchange rates: %w", err)
	}
	return nil
}

func (r *Repository) GetLatest(ctx context.Context, key string) (*domain.CachedRecord, error) {
	const query = `SELECT fetch_time, snapshot_json, metadata_json
		FROM exchange_rates
		WHERE source_identifier = ?
		ORDER BY fetch_time DESC
		LIMIT 1`

	var (
		fetchTime    int64
		snapshotStr  string
		metadataNull sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, key).Scan(&fetchTime, &snapshotStr, &metadataNull)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exchange rates: %w", err)
	}

	var stored snapshotJSON
	if err := json.Unmarshal([]byte(snapshotStr), &stored); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	capturedAt, err := time.Parse(time.RFC3339Nano, stored.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot timestamp: %w", err)
	}

	metadata := make(map[string]string)
	if metadataNull.Valid {
		if err := json.Unmarshal([]byte(metadataNull.String), &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return &domain.CachedRecord{
		Snapshot: domain.Snapshot{
			Rates:     stored.Rates,
			Timestamp: capturedAt,
		},
		FetchTimestamp: time.Unix(fetchTime, 0).UTC(),
		CacheKey:       key,
		Metadata:       metadata,
	}, nil
}

func (r *Repository) Exists(ctx context.Context, key string) (bool, error) {
	const query = `SELECT COUNT(1) FROM exchange_rates WHERE source_identifier = ?`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&n); err != nil {
		return false, fmt.Errorf("exchange rates exist: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}
