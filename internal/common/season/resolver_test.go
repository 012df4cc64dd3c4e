package season

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"nba-query-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.UTC) }
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestFromCalendar(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(1999, time.November, 1, 0, 0, 0, 0, time.UTC), "1999-00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromCalendar(tt.date), tt.date.String())
	}
}

func TestResolver_Override(t *testing.T) {
	db, mock := newMockDB(t)

	r := NewResolver(logger.NewTestLogger(t), WithOverride("2023-24"), WithDatabase(db))
	assert.Equal(t, "2023-24", r.Current(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_CanceledCallerStillGetsDatabaseSeason(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT season FROM games ORDER BY game_date DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"season"}).AddRow("2024-25"))

	r := NewResolver(logger.NewTestLogger(t),
		WithDatabase(db),
		WithClock(fixedClock(2026, time.January, 10)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "2024-25", r.Current(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_DatabaseThenCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT season FROM games ORDER BY game_date DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"season"}).AddRow("2024-25"))

	r := NewResolver(logger.NewTestLogger(t),
		WithCache(rdb, time.Hour),
		WithDatabase(db),
		WithClock(fixedClock(2026, time.January, 10)),
	)

	ctx := context.Background()
	assert.Equal(t, "2024-25", r.Current(ctx))

	cached, err := mr.Get(CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "2024-25", cached)
	assert.Equal(t, time.Hour, mr.TTL(CacheKey))

	// Second call is served from redis; no further query expected.
	assert.Equal(t, "2024-25", r.Current(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_FallsBackToCalendar(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock, cache redismock.ClientMock)
	}{
		{
			name: "database error and cache miss",
			setup: func(mock sqlmock.Sqlmock, cache redismock.ClientMock) {
				cache.ExpectGet(CacheKey).RedisNil()
				cache.ExpectGet(CacheKey).RedisNil()
				mock.ExpectQuery(`SELECT season FROM games`).WillReturnError(fmt.Errorf("connection refused"))
			},
		},
		{
			name: "empty games table and cache down",
			setup: func(mock sqlmock.Sqlmock, cache redismock.ClientMock) {
				cache.ExpectGet(CacheKey).SetErr(fmt.Errorf("dial tcp: i/o timeout"))
				cache.ExpectGet(CacheKey).SetErr(fmt.Errorf("dial tcp: i/o timeout"))
				mock.ExpectQuery(`SELECT season FROM games`).WillReturnRows(sqlmock.NewRows([]string{"season"}))
			},
		},
		{
			name: "malformed season value",
			setup: func(mock sqlmock.Sqlmock, cache redismock.ClientMock) {
				cache.ExpectGet(CacheKey).SetVal("garbage")
				cache.ExpectGet(CacheKey).SetVal("garbage")
				mock.ExpectQuery(`SELECT season FROM games`).WillReturnRows(sqlmock.NewRows([]string{"season"}).AddRow("2024"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			rdb, cacheMock := redismock.NewClientMock()
			tt.setup(mock, cacheMock)

			r := NewResolver(logger.NewTestLogger(t),
				WithCache(rdb, time.Hour),
				WithDatabase(db),
				WithClock(fixedClock(2025, time.November, 2)),
			)

			assert.Equal(t, "2025-26", r.Current(context.Background()))
			assert.NoError(t, mock.ExpectationsWereMet())
			assert.NoError(t, cacheMock.ExpectationsWereMet())
		})
	}
}

func TestResolver_NoSources(t *testing.T) {
	r := NewResolver(logger.NewNoOpLogger(), WithClock(fixedClock(2026, time.April, 1)))
	assert.Equal(t, "2025-26", r.Current(context.Background()))
}

func TestResolver_ConcurrentMissesShareOneQuery(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT season FROM games`).
		WillDelayFor(50 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"season"}).AddRow("2025-26"))

	r := NewResolver(logger.NewNoOpLogger(), WithCache(rdb, time.Hour), WithDatabase(db))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Current(context.Background())
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Equal(t, "2025-26", s)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
