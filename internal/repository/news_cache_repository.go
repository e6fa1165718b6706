package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// ErrCorruptCacheEntry is returned when a stored payload cannot be decoded.
var ErrCorruptCacheEntry = errors.New("corrupt news cache entry")

// NewsCacheRepository persists one msgpack encoded news page per cache key.
// Entries are replaced whole; expiry is decided by the reader, not the store.
type NewsCacheRepository struct {
	db *sql.DB
}

// NewNewsCacheRepository creates a new NewsCacheRepository with the provided database connection.
func NewNewsCacheRepository(db *sql.DB) *NewsCacheRepository {
	return &NewsCacheRepository{db: db}
}

// Get returns the entry stored under key.
// The bool is false when nothing is stored. A payload that fails to decode
// returns ErrCorruptCacheEntry.
func (r *NewsCacheRepository) Get(ctx context.Context, key string) (model.NewsCacheEntry, bool, error) {
	query := `SELECT payload FROM news_cache WHERE cache_key = ?`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewsCacheEntry{}, false, nil
	}
	if err != nil {
		return model.NewsCacheEntry{}, false, fmt.Errorf("failed to query news cache: %w", err)
	}

	var entry model.NewsCacheEntry
	if err := msgpack.Unmarshal(payload, &entry); err != nil {
		return model.NewsCacheEntry{}, false, fmt.Errorf("%w: %s: %w", ErrCorruptCacheEntry, key, err)
	}

	return entry, true, nil
}

// Put stores entry under key, replacing any previous entry.
func (r *NewsCacheRepository) Put(ctx context.Context, key string, entry model.NewsCacheEntry) error {
	payload, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode news cache entry: %w", err)
	}

	query := `
        INSERT OR REPLACE INTO news_cache (cache_key, payload, updated_at)
        VALUES (?, ?, ?)
    `

	if _, err := r.db.ExecContext(ctx, query, key, payload, FormatTime(time.Now())); err != nil {
		return fmt.Errorf("failed to store news cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (r *NewsCacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM news_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete news cache entry: %w", err)
	}
	return nil
}
