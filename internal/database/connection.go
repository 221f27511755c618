package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the default single-file store
	DriverSQLite = "sqlite3"
	// DriverPostgres keeps the bank on a postgres server
	DriverPostgres = "postgres"
)

// Connect opens the store and makes sure both tables exist
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		// Create data directory if it doesn't exist
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers, and every :memory:
		// connection is a separate database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vocab (
			id INTEGER PRIMARY KEY,
			word TEXT NOT NULL,
			definition TEXT DEFAULT '',
			example TEXT DEFAULT '',
			synonyms TEXT DEFAULT '',
			topic TEXT DEFAULT '',
			level INTEGER DEFAULT 0,
			box INTEGER DEFAULT 0,
			next_review TEXT DEFAULT '0000-00-00',
			pos TEXT DEFAULT '',
			mistake_count INTEGER DEFAULT 0,
			example_blank TEXT DEFAULT '',
			collocations TEXT DEFAULT '',
			confusables TEXT DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vocab table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS qc_log (
			timestamp TEXT NOT NULL,
			session_id TEXT NOT NULL,
			word_id INTEGER NOT NULL,
			word TEXT NOT NULL,
			kind TEXT NOT NULL,
			prompt TEXT DEFAULT '',
			stem TEXT DEFAULT '',
			options TEXT DEFAULT '',
			correct_answers TEXT DEFAULT '',
			judge_choice TEXT DEFAULT '',
			judge_correct INTEGER DEFAULT 0,
			judge_score INTEGER DEFAULT 0,
			is_defect INTEGER DEFAULT 0,
			defect_reasons TEXT DEFAULT '',
			advisories TEXT DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create qc_log table: %w", err)
	}

	return nil
}
