package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vbonduro/boxoffice/internal/docstore"
)

// Store keeps documents in the documents table created by internal/db
// migrations. Fields are stored as a JSON object and merged with json_patch.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateOrUpdate(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields) VALUES (?, ?, json(?))
		ON CONFLICT (collection, id) DO UPDATE SET
			fields = json_patch(documents.fields, excluded.fields),
			updated_at = datetime('now')
	`, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET fields = json_patch(fields, json(?)), updated_at = datetime('now')
		WHERE collection = ? AND id = ?
	`, string(data), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateIfEqual(ctx context.Context, collection, id, field, want string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents SET fields = json_patch(fields, json(?)), updated_at = datetime('now')
		WHERE collection = ? AND id = ? AND COALESCE(json_extract(fields, ?), '') = ?
	`, string(data), collection, id, jsonPath(field), want)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return s.missingOrConflict(ctx, collection, id)
	}
	return nil
}

// missingOrConflict explains why a guarded update matched no row.
func (s *Store) missingOrConflict(ctx context.Context, collection, id string) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrConflict)
}

func jsonPath(field string) string {
	return `$."` + field + `"`
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	return decode(id, raw)
}

func (s *Store) List(ctx context.Context, collection string) ([]*docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields FROM documents WHERE collection = ? ORDER BY created_at ASC, id ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", collection, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var docs []*docstore.Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func decode(id, raw string) (*docstore.Document, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return &docstore.Document{ID: id, Fields: fields}, nil
}
