package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kuro68k/kibom/internal/report"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(0)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS boms (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	revision   TEXT NOT NULL DEFAULT '',
	lines      INTEGER NOT NULL DEFAULT 0,
	parts      INTEGER NOT NULL DEFAULT 0,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_boms_source ON boms(source);
CREATE INDEX IF NOT EXISTS idx_boms_created_at ON boms(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveBOM(ctx context.Context, doc report.Document) (*BOMRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	lines, parts := summarize(doc)

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal document")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO boms (id, title, source, revision, lines, parts, document, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, doc.Header.Title, doc.Header.Source, doc.Header.Revision, lines, parts, docJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert bom")
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

func (s *PostgresStore) GetBOM(ctx context.Context, id string) (*BOMRecord, error) {
	var r BOMRecord
	var docJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, title, source, revision, lines, parts, created_at, document FROM boms WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Title, &r.Source, &r.Revision, &r.Lines, &r.Parts, &r.CreatedAt, &docJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get bom %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get bom %s", id)
	}

	var doc report.Document
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal document")
	}
	r.Document = &doc
	return &r, nil
}

func (s *PostgresStore) ListBOMs(ctx context.Context, filter BOMFilter) ([]BOMRecord, error) {
	query := `SELECT id, title, source, revision, lines, parts, created_at FROM boms WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list boms")
	}
	defer rows.Close()

	var out []BOMRecord
	for rows.Next() {
		var r BOMRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Source, &r.Revision, &r.Lines, &r.Parts, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan bom")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list boms iterate")
}

func (s *PostgresStore) DeleteBOM(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM boms WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete bom %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: bom %s", id)
	}
	return nil
}
