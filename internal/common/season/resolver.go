// Package season resolves the season key ("2025-26") that scopes every
// stats template.
package season

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	CacheKey = "nba:season:current"

	latestSeasonQuery = `SELECT season FROM games ORDER BY game_date DESC LIMIT 1`

	// sharedLookupTimeout bounds a lookup that may serve several callers.
	sharedLookupTimeout = 3 * time.Second
)

var seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// RowQuerier is satisfied by *sqlx.DB and database.PostgresClient.
type RowQuerier interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Resolver answers the current season. Lookups never fail: each source that
// errors is skipped and the calendar is the last resort.
type Resolver struct {
	override string
	cache    redis.Cmdable
	db       RowQuerier
	ttl      time.Duration
	now      func() time.Time
	logger   logger.Logger
	sf       singleflight.Group
}

type Option func(*Resolver)

func WithOverride(season string) Option {
	return func(r *Resolver) { r.override = season }
}

func WithCache(cache redis.Cmdable, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.ttl = ttl
	}
}

func WithDatabase(db RowQuerier) Option {
	return func(r *Resolver) { r.db = db }
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		ttl:    6 * time.Hour,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"component": "season"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the season key for new queries.
func (r *Resolver) Current(ctx context.Context) string {
	if r.override != "" {
		metrics.SeasonResolveTotal.WithLabelValues("override").Inc()
		return r.override
	}

	if s, ok := r.fromCache(ctx); ok {
		metrics.SeasonResolveTotal.WithLabelValues("cache").Inc()
		return s
	}

	v, _, _ := r.sf.Do(CacheKey, func() (interface{}, error) {
		// Detached from the first caller so its cancellation does not leak
		// into the others sharing this flight.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		if s, ok := r.fromCache(ctx); ok {
			metrics.SeasonResolveTotal.WithLabelValues("cache").Inc()
			return s, nil
		}
		if s, ok := r.fromDatabase(ctx); ok {
			metrics.SeasonResolveTotal.WithLabelValues("database").Inc()
			r.store(ctx, s)
			return s, nil
		}
		metrics.SeasonResolveTotal.WithLabelValues("calendar").Inc()
		return FromCalendar(r.now()), nil
	})
	return v.(string)
}

func (r *Resolver) fromCache(ctx context.Context) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	s, err := r.cache.Get(ctx, CacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("season cache read failed", map[string]interface{}{"error": err})
		}
		return "", false
	}
	if !seasonPattern.MatchString(s) {
		r.logger.Warn("ignoring malformed cached season", map[string]interface{}{"value": s})
		return "", false
	}
	return s, true
}

func (r *Resolver) fromDatabase(ctx context.Context) (string, bool) {
	if r.db == nil {
		return "", false
	}
	var s sql.NullString
	if err := r.db.QueryRowxContext(ctx, latestSeasonQuery).Scan(&s); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("season lookup failed", map[string]interface{}{"error": err})
		}
		return "", false
	}
	if !s.Valid || !seasonPattern.MatchString(s.String) {
		return "", false
	}
	return s.String, true
}

func (r *Resolver) store(ctx context.Context, s string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, CacheKey, s, r.ttl).Err(); err != nil {
		r.logger.Warn("season cache write failed", map[string]interface{}{"error": err})
	}
}

// FromCalendar derives the season from the date: a season starts in October,
// so 2025-11-02 is "2025-26" and 2026-03-15 is still "2025-26".
func FromCalendar(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
