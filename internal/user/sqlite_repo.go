package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libraryapi/internal/platform/database"
)

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

func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	const query = `INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRowContext(timeoutCtx, query, u.Username, u.PasswordHash).Scan(&u.ID)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `SELECT id, username, password_hash FROM users WHERE username = ? LIMIT 1`
	var u User
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRowContext(timeoutCtx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
