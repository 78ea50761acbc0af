// Package cache stores finished area analyses for a fixed time-to-live.
//
// Every adapter writes an explicit expiresAt stamp and checks it on read, so
// an entry is a miss once it is stale even if the backend has not evicted it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"site-traffic-workers/internal/common/config"
	"site-traffic-workers/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL       = 4 * time.Hour
	DefaultKeyPrefix = "traffic:area"
)

// Store is the method set the analysis engine expects from a cache.
type Store interface {
	Get(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, bool, error)
	Put(ctx context.Context, q models.AreaQuery, a *models.AreaAnalysis) error
	Delete(ctx context.Context, q models.AreaQuery) error
}

// Options are shared by all adapters.
type Options struct {
	TTL       time.Duration
	KeyPrefix string
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = DefaultKeyPrefix
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Key rounds coordinates to 4 decimals (about 11 m) and includes the UTC
// calendar day, so nearby queries on the same day share an entry.
func Key(prefix string, q models.AreaQuery, day time.Time) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%d:%s",
		prefix,
		round4(q.Latitude),
		round4(q.Longitude),
		q.RadiusMeters,
		day.UTC().Format("2006-01-02"),
	)
}

func round4(v float64) float64 {
	// +0 turns -0 into 0 so both format the same.
	return math.Round(v*1e4)/1e4 + 0
}

type entry struct {
	Analysis  *models.AreaAnalysis `json:"analysis"`
	CachedAt  time.Time            `json:"cachedAt"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

func newEntry(a *models.AreaAnalysis, now time.Time, ttl time.Duration) entry {
	stored := *a
	stored.Cached = false
	stored.CachedAt = nil
	now = now.UTC()
	return entry{Analysis: &stored, CachedAt: now, ExpiresAt: now.Add(ttl)}
}

// hit annotates a live entry; ok is false when it has expired.
func (e entry) hit(now time.Time) (*models.AreaAnalysis, bool) {
	if e.Analysis == nil || !now.Before(e.ExpiresAt) {
		return nil, false
	}
	out := *e.Analysis
	cachedAt := e.CachedAt
	out.Cached = true
	out.CachedAt = &cachedAt
	return &out, true
}

func encodeEntry(e entry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(data []byte) (entry, error) {
	var e entry
	err := json.Unmarshal(data, &e)
	return e, err
}

// Backends carries the connections New may pick from.
type Backends struct {
	Redis    *redis.Client
	Postgres *sqlx.DB
}

// New selects the adapter named by cfg.Backend.
func New(cfg config.CacheConfig, backends Backends) (Store, error) {
	opts := Options{
		TTL:       config.GetDuration(cfg.TTL),
		KeyPrefix: cfg.KeyPrefix,
	}

	switch cfg.Backend {
	case config.CacheBackendRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("redis cache selected but no redis client configured")
		}
		return NewRedis(backends.Redis, opts), nil
	case config.CacheBackendPostgres:
		if backends.Postgres == nil {
			return nil, fmt.Errorf("postgres cache selected but no database configured")
		}
		return NewPostgres(backends.Postgres, opts), nil
	case config.CacheBackendMemory, "":
		return NewMemory(opts), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
