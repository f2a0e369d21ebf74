package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/platform/metrics"
	"libraryapi/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidInput       = errors.New("invalid registration input")
	ErrUnauthorized       = errors.New("unauthorized")
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 50

	DefaultTokenTTL = 30 * time.Minute
)

// dummyHash is compared against when the username is unknown so that both
// login failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword("not-a-real-password")
	return h
})

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresIn   int
}

type Service struct {
	secret   string
	tokenTTL time.Duration
	users    UserStore
}

func NewService(secret string, tokenTTL time.Duration, users UserStore) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		secret:   secret,
		tokenTTL: tokenTTL,
		users:    users,
	}
}

// normalizeUsername is applied on every path that takes a username from a
// client, so the stored and the looked-up forms agree.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Register creates an account. The username is trimmed before it is checked
// and stored. A taken name is rejected before the password is hashed; the
// unique index still decides concurrent registrations.
func (s *Service) Register(ctx context.Context, username, password string) (user.User, error) {
	username = normalizeUsername(username)
	if n := utf8.RuneCountInString(username); n < MinUsernameLen || n > MaxUsernameLen {
		metrics.AuthRegistrationsTotal.WithLabelValues("invalid").Inc()
		return user.User{}, fmt.Errorf("%w: username must be between %d and %d characters", ErrInvalidInput, MinUsernameLen, MaxUsernameLen)
	}
	if password == "" || len(password) > crypto.MaxPasswordBytes {
		metrics.AuthRegistrationsTotal.WithLabelValues("invalid").Inc()
		return user.User{}, fmt.Errorf("%w: password must be between 1 and %d bytes", ErrInvalidInput, crypto.MaxPasswordBytes)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("taken").Inc()
		return user.User{}, ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Register(ctx, username, hash)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			metrics.AuthRegistrationsTotal.WithLabelValues("taken").Inc()
			return user.User{}, ErrUsernameTaken
		}
		return user.User{}, err
	}
	metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
	return u, nil
}

// Login checks credentials and issues an access token whose subject is the
// username. Unknown users and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	u, err := s.users.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return Token{}, err
		}
		crypto.VerifyPassword(dummyHash(), password)
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		return Token{}, ErrInvalidCredentials
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		return Token{}, ErrInvalidCredentials
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, u.Username, s.tokenTTL)
	if err != nil {
		return Token{}, err
	}
	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return Token{AccessToken: accessToken, ExpiresIn: int(s.tokenTTL.Seconds())}, nil
}

// Authenticate returns the username carried by a valid token.
func (s *Service) Authenticate(_ context.Context, token string) (string, error) {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return "", errors.Join(ErrUnauthorized, err)
	}
	return claims.Subject, nil
}
