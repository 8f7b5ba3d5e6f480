package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"homesearch/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS listing_cache (
	cache_key  TEXT PRIMARY KEY,
	request    TEXT NOT NULL,
	payload    JSONB NOT NULL,
	stored_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tool_call_logs (
	id           BIGSERIAL PRIMARY KEY,
	request_id   TEXT,
	call_id      TEXT NOT NULL,
	arguments    JSONB,
	outcome      TEXT NOT NULL,
	result_count INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tool_call_logs_request_id ON tool_call_logs (request_id);
`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the cache and audit tables when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordToolCall logs one executed tool call
func (r *PostgresRepository) RecordToolCall(ctx context.Context, entry model.ToolCallLog) error {
	query := `
		INSERT INTO tool_call_logs (request_id, call_id, arguments, outcome, result_count, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.RequestID,
		entry.CallID,
		jsonbArgument(entry.Arguments),
		entry.Outcome,
		entry.ResultCount,
		entry.Error,
		entry.DurationMs,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log tool call: %w", err)
	}
	return nil
}

// ToolCallsByRequest returns the audit entries of one request
func (r *PostgresRepository) ToolCallsByRequest(ctx context.Context, requestID string) ([]model.ToolCallLog, error) {
	var entries []model.ToolCallLog
	query := `
		SELECT request_id, call_id, arguments, outcome, result_count, error, duration_ms, created_at
		FROM tool_call_logs
		WHERE request_id = $1
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &entries, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to get tool calls: %w", err)
	}
	return entries, nil
}

// jsonbArgument returns the payload as JSON text; payloads the model
// garbled are stored as a JSON string
func jsonbArgument(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	if json.Valid(raw) {
		return string(raw)
	}
	quoted, _ := json.Marshal(string(raw))
	return string(quoted)
}

// PostgresListingCache stores listing pages in the listing_cache table
type PostgresListingCache struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

// ListingCache returns a cache backed by this repository
func (r *PostgresRepository) ListingCache(ttl time.Duration) *PostgresListingCache {
	return &PostgresListingCache{db: r.db, ttl: ttl, now: time.Now}
}

// GetListings returns an unexpired page for key
func (c *PostgresListingCache) GetListings(ctx context.Context, key string) ([]model.ListingRecord, bool, error) {
	var payload []byte
	query := `SELECT payload FROM listing_cache WHERE cache_key = $1 AND stored_at > $2`
	err := c.db.GetContext(ctx, &payload, query, cacheKey(key), c.now().Add(-c.ttl))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read listing cache: %w", err)
	}

	var records []model.ListingRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached listings: %w", err)
	}
	return records, true, nil
}

// PutListings upserts the page for key
func (c *PostgresListingCache) PutListings(ctx context.Context, key string, records []model.ListingRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode listings: %w", err)
	}

	query := `
		INSERT INTO listing_cache (cache_key, request, payload, stored_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload, stored_at = EXCLUDED.stored_at
	`
	if _, err := c.db.ExecContext(ctx, query, cacheKey(key), key, string(payload), c.now()); err != nil {
		return fmt.Errorf("failed to write listing cache: %w", err)
	}
	return nil
}
