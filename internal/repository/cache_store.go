package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rolloff-rates/internal/cache"
)

// PGXCacheStore keeps cache entries in the cache_entries table so every
// instance shares one view of the upstream data.
type PGXCacheStore struct {
	pool pgxPool
}

// NewPGXCacheStore wires a Postgres backed cache store.
func NewPGXCacheStore(pool *pgxpool.Pool) *PGXCacheStore {
	return &PGXCacheStore{pool: pool}
}

// Get implements cache.Store. Expired rows read as misses.
func (s *PGXCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value::text FROM cache_entries WHERE key = $1 AND expires_at > NOW()`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return []byte(value), true, nil
}

// Set implements cache.Store.
func (s *PGXCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO cache_entries (key, value, expires_at)
        VALUES ($1, $2::jsonb, NOW() + make_interval(secs => $3))
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            expires_at = EXCLUDED.expires_at
    `, key, string(value), ttl.Seconds())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// DeletePrefix implements cache.Store.
func (s *PGXCacheStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM cache_entries WHERE key LIKE $1 ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("delete cache entries: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

// PurgeExpired removes rows whose expiry has passed.
func (s *PGXCacheStore) PurgeExpired(ctx context.Context) (int, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge cache entries: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ cache.Store = (*PGXCacheStore)(nil)
