package book

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteRepo stores books in SQLite through database/sql.
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sql.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	stmt := buildList(q, sqliteDialect)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(timeoutCtx, stmt.countSQL, stmt.countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(timeoutCtx, stmt.dataSQL, stmt.dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year); err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	return books, total, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	query, args := buildSelectByID(sqliteDialect, id)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *SQLiteRepo) Create(ctx context.Context, in Input) (Book, error) {
	query, args := buildInsert(sqliteDialect, in)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b := Book{Title: in.Title, Author: in.Author, Year: in.Year}
	if err := r.db.QueryRowContext(timeoutCtx, query, args...).Scan(&b.ID); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, in Input) (Book, error) {
	query, args := buildReplace(sqliteDialect, id, in)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *SQLiteRepo) Patch(ctx context.Context, id int64, p Patch) (Book, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	query, args := buildPatch(sqliteDialect, id, p)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.queryOne(timeoutCtx, query, args)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	query, args := buildDelete(sqliteDialect, id)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) queryOne(ctx context.Context, query string, args []any) (Book, error) {
	var b Book
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.Title, &b.Author, &b.Year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}
