package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service handles credential verification and token issuance.
type Service struct {
	users     UserRepository
	jwtSecret string
	accessTTL time.Duration
}

// NewService creates an auth service backed by the given user repository.
func NewService(users UserRepository, jwtSecret string, accessTTL time.Duration) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

// Login verifies a username/password pair and returns a signed access token.
//
// Unknown usernames and wrong passwords both produce ErrInvalidCredentials
// so a caller cannot enumerate accounts. Inactive accounts are rejected
// after the password check for the same reason.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	token, err := GenerateAccessToken(user, s.jwtSecret, s.accessTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate validates an access token and returns the claims.
func (s *Service) Authenticate(tokenString string) (*CustomClaims, error) {
	return ParseToken(tokenString, s.jwtSecret)
}
