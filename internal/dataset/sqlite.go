// Package dataset provides the item sources a regeneration run iterates.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/giobyte8/thumbvariants/internal/regen"
)

const defaultTimeout = 5 * time.Second

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB is a read only handle on the application database holding the
// instances whose files are regenerated.
type DB struct {
	db   *sql.DB
	path string
}

func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	connStr := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Debug("Database opened", "path", path)
	return &DB{db: db, path: path}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Field returns the dataset of one image field. model has the form
// 'app.model' and maps to table 'app_model', field is the column
// holding the stored file name.
func (d *DB) Field(model, field string) (*SQLiteDataset, error) {
	app, name, ok := strings.Cut(model, ".")
	if !ok || !identifierRe.MatchString(app) || !identifierRe.MatchString(name) {
		return nil, fmt.Errorf("invalid model identifier %q", model)
	}
	if !identifierRe.MatchString(field) {
		return nil, fmt.Errorf("invalid field identifier %q", field)
	}

	return &SQLiteDataset{
		db:     d.db,
		table:  strings.ToLower(app + "_" + name),
		column: field,
	}, nil
}

// SQLiteDataset lists every row of one table ordered by primary key.
type SQLiteDataset struct {
	db     *sql.DB
	table  string
	column string
}

func (s *SQLiteDataset) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, s.table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", s.table, err)
	}
	return n, nil
}

func (s *SQLiteDataset) Each(ctx context.Context, fn func(regen.Item) error) error {
	query := fmt.Sprintf(
		`SELECT CAST(id AS TEXT), COALESCE("%s", '') FROM "%s" ORDER BY id`,
		s.column,
		s.table,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", s.table, s.column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item regen.Item
		if err := rows.Scan(&item.ID, &item.File); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", s.table, err)
		}
		if err := fn(item); err != nil {
			return err
		}
	}

	return rows.Err()
}
