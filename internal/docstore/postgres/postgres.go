package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vbonduro/boxoffice/internal/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT        NOT NULL,
    id         TEXT        NOT NULL,
    fields     JSONB       NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection, created_at);
`

// Store keeps documents in a JSONB column. Merges use the jsonb || operator,
// which replaces top-level keys and keeps the rest.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn and makes sure the documents table exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateOrUpdate(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET
			fields = documents.fields || excluded.fields,
			updated_at = now()
	`, collection, id, fields)
	if err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET fields = fields || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, fields)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateIfEqual(ctx context.Context, collection, id, field, want string, fields map[string]any) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET fields = fields || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2 AND COALESCE(fields->>$4::text, '') = $5::text
	`, collection, id, fields, field, want)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrConflict)
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var fields map[string]any
	err := s.pool.QueryRow(ctx, `
		SELECT fields FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&fields)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	return &docstore.Document{ID: id, Fields: fields}, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]*docstore.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, fields FROM documents WHERE collection = $1 ORDER BY created_at ASC, id ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*docstore.Document
	for rows.Next() {
		doc := &docstore.Document{}
		if err := rows.Scan(&doc.ID, &doc.Fields); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}
