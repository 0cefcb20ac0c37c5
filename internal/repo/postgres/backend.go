package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/learnhub/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	kind       TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (kind, id)
);
DROP INDEX IF EXISTS records_users_email_idx;
CREATE UNIQUE INDEX IF NOT EXISTS records_users_email_key ON records ((body->>'email')) WHERE kind = 'users';
CREATE INDEX IF NOT EXISTS records_enrollments_user_idx ON records ((body->>'user_id')) WHERE kind = 'enrollments';
`

// primary key constraint of the records table
const pkeyConstraint = "records_pkey"

// uniqueViolation reports the constraint a unique violation tripped.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// Backend stores every kind of record as a JSONB row in one table.
type Backend struct {
	pool *pgxpool.Pool
}

func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

// EnsureSchema creates the records table and its lookup indexes if missing.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, schema)
	if err != nil {
		return store.Unavailable("ensure schema", err)
	}
	return nil
}

func (b *Backend) Insert(ctx context.Context, kind, id string, doc []byte) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO records (kind, id, body, created_at, updated_at) VALUES ($1, $2, $3::jsonb, NOW(), NOW())`,
		kind, id, string(doc),
	)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == pkeyConstraint {
				return store.ErrIDTaken
			}
			return store.ErrConflict
		}
		return store.Unavailable(kind+".insert", err)
	}

	return nil
}

func (b *Backend) Fetch(ctx context.Context, kind, id string) ([]byte, error) {
	var doc []byte

	err := b.pool.QueryRow(ctx,
		`SELECT body FROM records WHERE kind = $1 AND id = $2`,
		kind, id,
	).Scan(&doc)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.Unavailable(kind+".get", err)
	}

	return doc, nil
}

func (b *Backend) All(ctx context.Context, kind string) ([][]byte, error) {
	return b.query(ctx, kind+".list",
		`SELECT body FROM records WHERE kind = $1 ORDER BY id ASC`,
		kind,
	)
}

func (b *Backend) Match(ctx context.Context, kind, field, value string) ([][]byte, error) {
	return b.query(ctx, kind+".query",
		`SELECT body FROM records WHERE kind = $1 AND body->>$2 = $3 ORDER BY id ASC`,
		kind, field, value,
	)
}

// Modify locks the row for the duration of fn so concurrent updaters of the
// same id serialize.
func (b *Backend) Modify(ctx context.Context, kind, id string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, store.Unavailable(kind+".update", err)
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var current []byte

	err = tx.QueryRow(ctx,
		`SELECT body FROM records WHERE kind = $1 AND id = $2 FOR UPDATE`,
		kind, id,
	).Scan(&current)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.Unavailable(kind+".update", err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE records SET body = $3::jsonb, updated_at = NOW() WHERE kind = $1 AND id = $2`,
		kind, id, string(next),
	)
	if err != nil {
		return nil, store.Unavailable(kind+".update", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, store.Unavailable(kind+".update", err)
	}

	return next, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func (b *Backend) query(ctx context.Context, op, sql string, args ...any) ([][]byte, error) {
	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Unavailable(op, err)
	}

	defer rows.Close()

	out := make([][]byte, 0)

	for rows.Next() {
		var doc []byte

		if err := rows.Scan(&doc); err != nil {
			return nil, store.Unavailable(op, err)
		}

		out = append(out, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(op, err)
	}

	return out, nil
}
