// Package clientdata provides persistent caching for external API client responses.
// All data is stored as JSON blobs with expiration timestamps for cache-first behavior.
package clientdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Cache tables in client_data.db.
const (
	TableVaultCatalog    = "vault_catalog"
	TablePoolMarkets     = "pool_markets"
	TableLendingAccounts = "lending_accounts"
	TableLendingReserves = "lending_reserves"
)

// AllTables lists all tables in client_data.db for cleanup operations.
var AllTables = []string{
	TableVaultCatalog,
	TablePoolMarkets,
	TableLendingAccounts,
	TableLendingReserves,
}

// keyColumns maps each table to its primary key column.
var keyColumns = map[string]string{
	TableVaultCatalog:    "chain",
	TablePoolMarkets:     "source",
	TableLendingAccounts: "account",
	TableLendingReserves: "asset",
}

// Status describes where a GetOrFetch result came from.
type Status string

const (
	StatusHit   Status = "hit"   // fresh cache entry
	StatusMiss  Status = "miss"  // fetched from upstream and stored
	StatusStale Status = "stale" // upstream failed, expired entry served
)

// Repository provides cache operations for client data.
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger used for non-fatal cache write failures.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Repository) {
		r.log = log.With().Str("module", "clientdata").Logger()
	}
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{db: db, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if _, ok := keyColumns[table]; !ok {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := r.now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, data, expires_at) VALUES (?, ?, ?)",
		table, keyColumns[table],
	)

	if _, err := r.db.Exec(query, key, string(jsonData), expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh returns data only if expires_at > now, nil otherwise.
// Returns nil, nil if the key doesn't exist or data is expired.
// Use Get() to retrieve stale data as a fallback when API calls fail.
func (r *Repository) GetIfFresh(table, key string) (json.RawMessage, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT data FROM %s WHERE %s = ? AND expires_at > ?",
		table, keyColumns[table],
	)

	var data string
	err := r.db.QueryRow(query, key, r.now().Unix()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	return json.RawMessage(data), nil
}

// Get returns data regardless of expiration status.
// Returns nil, nil if the key doesn't exist.
func (r *Repository) Get(table, key string) (json.RawMessage, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE %s = ?", table, keyColumns[table])

	var data string
	err := r.db.QueryRow(query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	return json.RawMessage(data), nil
}

// Delete removes a specific entry. Deleting a missing key is not an error.
func (r *Repository) Delete(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, keyColumns[table])

	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return nil
}

// DeleteExpired removes rows that expired more than grace ago, that is where
// expires_at < now - grace. Returns the number of rows deleted.
func (r *Repository) DeleteExpired(table string, grace time.Duration) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)

	result, err := r.db.Exec(query, r.now().Add(-grace).Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// DeleteAllExpired runs DeleteExpired over every table.
// Returns a map of table name to number of rows deleted.
func (r *Repository) DeleteAllExpired(grace time.Duration) (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table, grace)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}

	return results, nil
}

// GetOrFetch serves a fresh cache entry when there is one. Otherwise it calls
// fetch and stores the result for ttl. When fetch fails an expired entry is
// served instead, and only if there is none does the fetch error surface.
func GetOrFetch[T any](
	ctx context.Context,
	r *Repository,
	table, key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (T, Status, error) {
	var zero T

	raw, err := r.GetIfFresh(table, key)
	if err != nil {
		return zero, "", err
	}
	if raw != nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, StatusHit, nil
		}
		r.log.Warn().Str("table", table).Str("key", key).Msg("Discarding undecodable cache entry")
		if err := r.Delete(table, key); err != nil {
			return zero, "", err
		}
	}

	value, fetchErr := fetch(ctx)
	if fetchErr == nil {
		if err := r.Store(table, key, value, ttl); err != nil {
			r.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Failed to cache fetched data")
		}
		return value, StatusMiss, nil
	}

	raw, err = r.Get(table, key)
	if err != nil || raw == nil {
		return zero, StatusMiss, fetchErr
	}
	var stale T
	if err := json.Unmarshal(raw, &stale); err != nil {
		return zero, StatusMiss, fetchErr
	}

	r.log.Warn().Err(fetchErr).Str("table", table).Str("key", key).Msg("Serving stale cache entry")
	return stale, StatusStale, nil
}
