// Package store executes validated SQL against the SQLite warehouse.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/logging"
	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

// ExecutionError reports that the store rejected or errored on a query.
// SQL carries the statement that was attempted.
type ExecutionError struct {
	Message string
	SQL     string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("SQL execution failed: %s (query: %s)", e.Message, e.SQL)
}

// Store runs read-only queries against the SQLite database file.
//
// Each Execute call opens its own connection in read-only mode and closes it
// before returning, success or failure. The read-only open is defense in
// depth alongside SQL validation: even a query that slipped past the
// validator cannot write.
type Store struct {
	path    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewStore creates a store over the given SQLite file. timeout bounds a
// single execution round trip.
func NewStore(path string, timeout time.Duration, logger *zap.Logger) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		path:    path,
		timeout: timeout,
		logger:  logger.Named("store"),
	}
}

// readOnlyDSN opens the database file in read-only mode.
func (s *Store) readOnlyDSN() string {
	return fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", s.path)
}

// Execute runs the query and materializes every row before returning. The
// result is never partial: on any error the connection is closed and an
// ExecutionError is returned instead of a ResultSet.
func (s *Store) Execute(ctx context.Context, sqlQuery string) (*models.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := sql.Open("sqlite3", s.readOnlyDSN())
	if err != nil {
		return nil, &ExecutionError{Message: err.Error(), SQL: sqlQuery}
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.logger.Warn("failed to close database", zap.Error(cerr))
		}
	}()

	start := time.Now()
	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		s.logger.Debug("query rejected",
			zap.String("query", logging.SanitizeQuery(sqlQuery)),
			zap.Error(err))
		return nil, &ExecutionError{Message: err.Error(), SQL: sqlQuery}
	}
	defer rows.Close()

	result, err := materialize(rows)
	if err != nil {
		return nil, &ExecutionError{Message: err.Error(), SQL: sqlQuery}
	}

	s.logger.Debug("query executed",
		zap.String("query", logging.SanitizeQuery(sqlQuery)),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// materialize drains the cursor into an ordered column list and row maps.
func materialize(rows *sql.Rows) (*models.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &models.ResultSet{
		Columns: cols,
		Rows:    []map[string]any{},
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			record[col] = normalizeValue(vals[i])
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// normalizeValue maps driver values onto the scalar types the rest of the
// pipeline understands: string, int64, float64, bool, or nil.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}
