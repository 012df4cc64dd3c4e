// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "nba-query-workers/internal/models"

type Input struct {
	Intent *models.QueryIntent `json:"intent"`
}

type Output struct {
	Result             models.QueryResult `json:"result"`
	RowCount           int                `json:"rowCount"`
	QueryExecutionTime int64              `json:"queryExecutionTime"` // milliseconds
}
