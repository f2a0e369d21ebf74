package auth

import (
	"context"

	"libraryapi/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=auth

// UserStore is the part of the user service auth depends on.
type UserStore interface {
	Register(ctx context.Context, username, passwordHash string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}
