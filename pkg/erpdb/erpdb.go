// Package erpdb runs validated read-only statements against the ERP MySQL
// database. Retries on empty results live a layer above, in pkg/retry.
package erpdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// QueryError wraps a driver-level failure together with the statement that
// caused it.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("erpdb: la consulta falló: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Row is one result record keyed by column name.
type Row = map[string]any

// ResultSet is an ordered result: Columns preserves the select-list order the
// driver reported, Rows preserves row order.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the set holds no rows. A nil set counts as empty.
func (rs *ResultSet) Empty() bool { return rs == nil || len(rs.Rows) == 0 }

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Executor executes SQL through sqlx and normalizes driver values.
type Executor struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Executor {
	return &Executor{DB: db}
}

// Query runs a statement and returns its rows, never nil on success. Driver
// failures are logged and wrapped in *QueryError.
func (e *Executor) Query(ctx context.Context, sql string) (*ResultSet, error) {
	log.Debug().Str("sql", sql).Msg("Executing query")

	rows, err := e.DB.QueryxContext(ctx, sql)
	if err != nil {
		log.Warn().Err(err).Str("sql", sql).Msg("Query failed")
		return nil, &QueryError{SQL: sql, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}

	rs := &ResultSet{Columns: cols, Rows: make([]Row, 0, 8)}
	for rows.Next() {
		row := Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, &QueryError{SQL: sql, Err: err}
		}
		for k, v := range row {
			row[k] = normalize(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}

	log.Debug().Int("rows", rs.Len()).Msg("Query returned")
	return rs, nil
}

// normalize converts driver byte slices to strings so results are printable
// and comparable; time values pass through unchanged.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t
	default:
		return v
	}
}
