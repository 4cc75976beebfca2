package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

// Bootstrap creates the warehouse tables and, when seedDir is non-empty,
// reloads each table from <table>.csv found there. Missing seed files are
// logged and skipped so the service can serve against an existing database.
//
// This is the only place the database file is opened writable; every query
// afterwards goes through the read-only Store.
func Bootstrap(ctx context.Context, path, seedDir string, schema models.Schema, logger *zap.Logger) error {
	logger = logger.Named("bootstrap")

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, table := range schema.Tables {
		if _, err := db.ExecContext(ctx, createTableStatement(table)); err != nil {
			return fmt.Errorf("create table %s: %w", table.Name, err)
		}
	}

	if seedDir == "" {
		return nil
	}

	for _, table := range schema.Tables {
		csvPath := filepath.Join(seedDir, table.Name+".csv")
		if _, err := os.Stat(csvPath); err != nil {
			logger.Warn("seed file not found, skipping",
				zap.String("table", table.Name),
				zap.String("path", csvPath))
			continue
		}
		n, err := loadCSV(ctx, db, table, csvPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", csvPath, err)
		}
		logger.Info("seeded table",
			zap.String("table", table.Name),
			zap.Int("rows", n))
	}

	return nil
}

func createTableStatement(table models.Table) string {
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table.Name, strings.Join(cols, ", "))
}

// loadCSV replaces the table contents with the rows from the CSV file. The
// header row must name a subset of the table's columns; values are inserted
// as text and converted by SQLite's type affinity.
func loadCSV(ctx context.Context, db *sql.DB, table models.Table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	known := make(map[string]bool, len(table.Columns))
	for _, c := range table.Columns {
		known[c.Name] = true
	}
	for _, col := range header {
		if !known[col] {
			return 0, fmt.Errorf("unknown column %q in header", col)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table.Name); err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table.Name, strings.Join(header, ", "), placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", count+1, err)
		}
		args := make([]any, len(record))
		for i, v := range record {
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
