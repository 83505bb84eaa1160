package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kuro68k/kibom/internal/report"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS boms (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	revision   TEXT NOT NULL DEFAULT '',
	lines      INTEGER NOT NULL DEFAULT 0,
	parts      INTEGER NOT NULL DEFAULT 0,
	document   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_boms_source ON boms(source);
CREATE INDEX IF NOT EXISTS idx_boms_created_at ON boms(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBOM(ctx context.Context, doc report.Document) (*BOMRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	lines, parts := summarize(doc)

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal document")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO boms (id, title, source, revision, lines, parts, document, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Header.Title, doc.Header.Source, doc.Header.Revision, lines, parts, string(docJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert bom")
	}

	return &BOMRecord{
		ID:        id,
		Title:     doc.Header.Title,
		Source:    doc.Header.Source,
		Revision:  doc.Header.Revision,
		Lines:     lines,
		Parts:     parts,
		CreatedAt: now,
		Document:  &doc,
	}, nil
}

func (s *SQLiteStore) GetBOM(ctx context.Context, id string) (*BOMRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, source, revision, lines, parts, created_at, document FROM boms WHERE id = ?`,
		id,
	)

	var r BOMRecord
	var docJSON string
	err := row.Scan(&r.ID, &r.Title, &r.Source, &r.Revision, &r.Lines, &r.Parts, &r.CreatedAt, &docJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get bom %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan bom")
	}

	var doc report.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal document")
	}
	r.Document = &doc
	return &r, nil
}

func (s *SQLiteStore) ListBOMs(ctx context.Context, filter BOMFilter) ([]BOMRecord, error) {
	query := `SELECT id, title, source, revision, lines, parts, created_at FROM boms WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list boms")
	}
	defer rows.Close() //nolint:errcheck

	var out []BOMRecord
	for rows.Next() {
		var r BOMRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Source, &r.Revision, &r.Lines, &r.Parts, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan bom")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list boms iterate")
}

func (s *SQLiteStore) DeleteBOM(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boms WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete bom %s", id)
	}
	return checkRowsAffected(res, id)
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: bom %s", id)
	}
	return nil
}
