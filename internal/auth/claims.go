package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims extends JWT standard claims with liaison-specific fields.
type CustomClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// defaultAccessTTL is used when the configured TTL is missing or invalid.
const defaultAccessTTL = 15 * time.Minute

// GenerateAccessToken creates a signed JWT access token for a user.
// Access tokens are short-lived and validated by signature only (no DB hit).
func GenerateAccessToken(user *User, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}

	now := time.Now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Username: user.Username,
		Role:     user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates and parses a JWT access token, returning the custom claims.
// It checks the signature, expiry, and required fields.
func ParseToken(tokenString, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrTokenInvalid)
	}

	return claims, nil
}
