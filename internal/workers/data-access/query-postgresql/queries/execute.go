// internal/workers/data-access/query-postgresql/queries/execute.go
package queries

import (
	"context"
	"fmt"
	"time"

	"nba-query-workers/internal/models"

	"github.com/jmoiron/sqlx"
)

// Querier is the read side of the connection pool. *sqlx.DB and
// database.PostgresClient satisfy it.
type Querier interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// Execute runs q and returns every row keyed by column name. Text-like
// columns (including postgres numeric) come back as strings.
func Execute(ctx context.Context, db Querier, q Query) ([]models.Row, time.Duration, error) {
	start := time.Now()

	rows, err := db.QueryxContext(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, time.Since(start), err
	}
	defer rows.Close()

	data := make([]models.Row, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, time.Since(start), fmt.Errorf("scan %s row: %w", q.Template(), err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Since(start), err
	}

	return data, time.Since(start), nil
}
