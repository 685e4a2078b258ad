package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	_ "modernc.org/sqlite"
)

const ddl = `
CREATE TABLE IF NOT EXISTS apps (
	id TEXT PRIMARY KEY,
	tree JSON NOT NULL,
	nodes INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
`

// Store implements ports.StateStore on SQLite (pure Go driver).
type Store struct {
	db *sql.DB
}

// Open opens the database described by dsn and creates the schema.
// Use "file::memory:?cache=shared" for an ephemeral database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing handle. The schema must already exist or be
// created with Migrate.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the tree for appID.
func (s *Store) Save(ctx context.Context, appID string, tree domain.Tree) error {
	data, err := domain.MarshalTree(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO apps (id, tree, nodes, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tree = excluded.tree, nodes = excluded.nodes, updated_at = excluded.updated_at`,
		appID, string(data), domain.Count(tree), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save %s: %w", appID, err)
	}
	return nil
}

// Load retrieves the tree for appID.
func (s *Store) Load(ctx context.Context, appID string) (domain.Tree, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT tree FROM apps WHERE id = ?`, appID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", appID, err)
	}

	tree, err := schema.ParseJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("corrupt row for %s: %w", appID, err)
	}
	return tree, nil
}

// Delete removes appID.
func (s *Store) Delete(ctx context.Context, appID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM apps WHERE id = ?`, appID); err != nil {
		return fmt.Errorf("delete %s: %w", appID, err)
	}
	return nil
}

// List returns identifiers, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM apps ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	apps := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		apps = append(apps, id)
	}
	return apps, rows.Err()
}
