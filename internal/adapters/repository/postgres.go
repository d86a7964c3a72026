package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/formpost/internal/domain/model"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS submissions (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	email                 TEXT NOT NULL,
	phone                 TEXT NOT NULL,
	address               TEXT NOT NULL,
	programming_languages TEXT NOT NULL,
	tools                 TEXT NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL
)`

const selectColumns = `id, name, email, phone, address, programming_languages, tools, created_at, updated_at`

// PostgresStore keeps submissions in a PostgreSQL table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, checks the connection and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrStore, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStore, err)
	}
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the submissions table when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("%w: create table: %w", ErrStore, err)
	}
	return nil
}

// Save implements Store.
func (p *PostgresStore) Save(ctx context.Context, s model.Submission) error {
	const query = `INSERT INTO submissions (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			programming_languages = EXCLUDED.programming_languages,
			tools = EXCLUDED.tools,
			updated_at = EXCLUDED.updated_at`

	r := s.Record
	_, err := p.db.ExecContext(ctx, query,
		s.ID, r.Name, r.Email, r.Phone, r.Address, r.ProgrammingLanguages, r.Tools,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrStore, s.ID, err)
	}
	return nil
}

// Get implements Store.
func (p *PostgresStore) Get(ctx context.Context, id string) (model.Submission, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("%w: get %s: %w", ErrStore, id, err)
	}
	return s, nil
}

// List implements Store.
func (p *PostgresStore) List(ctx context.Context, limit int) ([]model.Submission, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM submissions ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	return out, nil
}

// Count implements Store.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStore, err)
	}
	return n, nil
}

// Close releases the database handle.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (model.Submission, error) {
	var s model.Submission
	r := &s.Record
	err := row.Scan(&s.ID, &r.Name, &r.Email, &r.Phone, &r.Address, &r.ProgrammingLanguages, &r.Tools,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Submission{}, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
