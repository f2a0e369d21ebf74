package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=user

// Repository stores accounts. Create reports ErrAlreadyExists when the
// username is taken, whoever got there first.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (User, error)
}
