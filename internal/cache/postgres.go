package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/models"

	"github.com/jmoiron/sqlx"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS area_analysis_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

const selectEntrySQL = `SELECT payload, cached_at, expires_at FROM area_analysis_cache WHERE cache_key = $1`

const upsertEntrySQL = `
INSERT INTO area_analysis_cache (cache_key, payload, cached_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cache_key) DO UPDATE
SET payload = EXCLUDED.payload, cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`

const deleteEntrySQL = `DELETE FROM area_analysis_cache WHERE cache_key = $1`

const purgeExpiredSQL = `DELETE FROM area_analysis_cache WHERE expires_at <= $1`

// Postgres is the durable adapter. Rows are upserted so the last write for a
// key wins.
type Postgres struct {
	db   *sqlx.DB
	opts Options
}

type cacheRow struct {
	Payload   []byte    `db:"payload"`
	CachedAt  time.Time `db:"cached_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

func NewPostgres(db *sqlx.DB, opts Options) *Postgres {
	return &Postgres{db: db, opts: opts.withDefaults()}
}

// EnsureSchema creates the cache table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createTableSQL)
	return err
}

func (p *Postgres) Get(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, bool, error) {
	now := p.opts.Now()
	key := Key(p.opts.KeyPrefix, q, now)

	var row cacheRow
	err := p.db.GetContext(ctx, &row, selectEntrySQL, key)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewCacheReadFailedError(key, err)
	}

	var analysis models.AreaAnalysis
	if err := json.Unmarshal(row.Payload, &analysis); err != nil {
		return nil, false, errors.NewCacheReadFailedError(key, err)
	}

	e := entry{Analysis: &analysis, CachedAt: row.CachedAt.UTC(), ExpiresAt: row.ExpiresAt}
	a, live := e.hit(now)
	return a, live, nil
}

func (p *Postgres) Put(ctx context.Context, q models.AreaQuery, a *models.AreaAnalysis) error {
	now := p.opts.Now()
	key := Key(p.opts.KeyPrefix, q, now)

	e := newEntry(a, now, p.opts.TTL)
	payload, err := json.Marshal(e.Analysis)
	if err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}

	if _, err := p.db.ExecContext(ctx, upsertEntrySQL, key, payload, e.CachedAt, e.ExpiresAt); err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, q models.AreaQuery) error {
	key := Key(p.opts.KeyPrefix, q, p.opts.Now())
	if _, err := p.db.ExecContext(ctx, deleteEntrySQL, key); err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}
	return nil
}

// PurgeExpired removes stale rows. Reads never depend on it.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, purgeExpiredSQL, p.opts.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
