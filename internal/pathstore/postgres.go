package pathstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PostgresStore keeps one jsonb document per path. Each statement touches a
// single row, which gives the atomic single-path write the Store contract
// promises without leaning on cross-row transactions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the backing table. Safe to run on every start.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, path string, dest any) error {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE path = $1`, path,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("Get %s: %w", path, ErrPathNotFound)
	}
	if err != nil {
		return fmt.Errorf("Get %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("Get %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("Set %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, value) VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		path, raw,
	)
	if err != nil {
		return fmt.Errorf("Set %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) SetIfAbsent(ctx context.Context, path string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("SetIfAbsent %s: %w", path, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (path, value) VALUES ($1, $2)
		ON CONFLICT (path) DO NOTHING`,
		path, raw,
	)
	if err != nil {
		return false, fmt.Errorf("SetIfAbsent %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("SetIfAbsent %s: rows affected: %w", path, err)
	}
	return n > 0, nil
}

func (s *PostgresStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("Merge %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, value) VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE
		SET value = documents.value || EXCLUDED.value, updated_at = now()`,
		path, raw,
	)
	if err != nil {
		return fmt.Errorf("Merge %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("Delete %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) Children(ctx context.Context, path string) ([]string, error) {
	prefix := path + "/"
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM documents WHERE path LIKE $1 || '/%'`, path,
	)
	if err != nil {
		return nil, fmt.Errorf("Children %s: %w", path, err)
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("Children %s: scan: %w", path, err)
		}
		child, _, _ := strings.Cut(strings.TrimPrefix(p, prefix), "/")
		if child != "" {
			seen[child] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Children %s: rows: %w", path, err)
	}

	children := make([]string, 0, len(seen))
	for c := range seen {
		children = append(children, c)
	}
	sort.Strings(children)
	return children, nil
}
