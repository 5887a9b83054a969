package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	"budget/internal/journal"
	"budget/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the journal kept in a SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; keeps entry appends strictly ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)
	logger.Info("SQLite journal ready", log.FieldPath, dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateCategory implements journal.Journal
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c journal.CategoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert category %q: %w", c.Name, err)
	}

	r.logger.InfoContext(ctx, "Category saved to SQLite",
		log.FieldCategoryID, c.ID,
		log.FieldCategory, c.Name)
	return nil
}

// AppendEntries implements journal.Journal. The batch is written in one
// transaction; a seq that is not the next one for its category aborts it.
func (r *SQLiteRepository) AppendEntries(ctx context.Context, entries []journal.EntryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		var last int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM entries WHERE category_id = ?`, e.CategoryID).Scan(&last)
		if err != nil {
			return fmt.Errorf("read last seq: %w", err)
		}
		if e.Seq != last+1 {
			return fmt.Errorf("category %q: expected seq %d, got %d", e.CategoryID, last+1, e.Seq)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entries (category_id, seq, amount, description) VALUES (?, ?, ?, ?)`,
			e.CategoryID, e.Seq, e.Amount.String(), e.Description)
		if err != nil {
			return fmt.Errorf("insert entry %s/%d: %w", e.CategoryID, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}

	r.logger.DebugContext(ctx, "Entries saved to SQLite", log.FieldEntries, len(entries))
	return nil
}

// ListCategories implements journal.Journal
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]journal.CategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []journal.CategoryRecord
	for rows.Next() {
		var (
			c       journal.CategoryRecord
			created string
		)
		if err := rows.Scan(&c.ID, &c.Name, &created); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at of %q: %w", c.Name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListEntries implements journal.Journal
func (r *SQLiteRepository) ListEntries(ctx context.Context, categoryID string) ([]journal.EntryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.category_id, c.name, e.seq, e.amount, e.description
		FROM entries e JOIN categories c ON c.id = e.category_id
		WHERE e.category_id = ?
		ORDER BY e.seq`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []journal.EntryRecord
	for rows.Next() {
		var (
			e      journal.EntryRecord
			amount string
		)
		if err := rows.Scan(&e.CategoryID, &e.Category, &e.Seq, &amount, &e.Description); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Amount, err = core.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("entry %s/%d: %w", e.CategoryID, e.Seq, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ journal.Journal = (*SQLiteRepository)(nil)
