package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each document as a JSON body next to the columns used
// for filtering.
type SQLiteStore struct {
	conn *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &SQLiteStore{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  institution TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  unitName TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_institution ON documents(institution);
CREATE INDEX IF NOT EXISTS idx_documents_year ON documents(year);
`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore) Find(ctx context.Context, filter Filter) ([]StoredDocument, error) {
	var where []string
	var args []any
	if filter.InstitutionName != "" {
		where = append(where, "institution = ?")
		args = append(args, filter.InstitutionName)
	}
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.MissingUnitName {
		where = append(where, "unitName = ''")
	}

	query := `SELECT body FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY createdAt ASC, id ASC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StoredDocument{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc StoredDocument
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (StoredDocument, error) {
	return getDocument(ctx, s.conn, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDocument(ctx context.Context, q queryRower, id string) (StoredDocument, error) {
	var body string
	err := q.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDocument{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return StoredDocument{}, err
	}

	var doc StoredDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return StoredDocument{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

func (s *SQLiteStore) InsertOrReplace(ctx context.Context, doc StoredDocument) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := putDocument(ctx, s.conn, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putDocument(ctx context.Context, e execer, doc StoredDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	_, err = e.ExecContext(ctx, `
INSERT INTO documents (id, institution, year, unitName, body)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  institution=excluded.institution,
  year=excluded.year,
  unitName=excluded.unitName,
  body=excluded.body,
  updatedAt=CURRENT_TIMESTAMP
`, doc.ID, doc.InstitutionName, doc.ReferenceYear, strings.TrimSpace(doc.Unit.Name), string(body))
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fn func(*StoredDocument) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	doc, err := getDocument(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	doc.ID = id
	if err := putDocument(ctx, tx, doc); err != nil {
		return err
	}
	return tx.Commit()
}
