package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	stmt := buildList(q, postgresDialect)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, stmt.countSQL, stmt.countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(timeoutCtx, stmt.dataSQL, stmt.dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	books, err := pgx.CollectRows(rows, scanBookRow)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	query, args := buildSelectByID(postgresDialect, id)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *PostgresRepo) Create(ctx context.Context, in Input) (Book, error) {
	query, args := buildInsert(postgresDialect, in)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b := Book{Title: in.Title, Author: in.Author, Year: in.Year}
	if err := r.db.QueryRow(timeoutCtx, query, args...).Scan(&b.ID); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, in Input) (Book, error) {
	query, args := buildReplace(postgresDialect, id, in)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *PostgresRepo) Patch(ctx context.Context, id int64, p Patch) (Book, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	query, args := buildPatch(postgresDialect, id, p)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	query, args := buildDelete(postgresDialect, id)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) queryOne(ctx context.Context, query string, args []any) (Book, error) {
	var b Book
	err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Title, &b.Author, &b.Year)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func scanBookRow(row pgx.CollectableRow) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Year)
	return b, err
}
