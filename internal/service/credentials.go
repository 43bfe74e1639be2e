package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"smart-blog-api/pkg/apierror"
)

// CredentialService hashes passwords and issues/verifies HS256 access
// tokens. Tokens are stateless: expiry is the only way one stops working,
// and changing the secret invalidates every outstanding token.
type CredentialService struct {
	secret     []byte
	accessTTL  time.Duration
	bcryptCost int
	now        func() time.Time
}

type CredentialOption func(*CredentialService)

// WithClock replaces time.Now for token issuance and verification.
func WithClock(now func() time.Time) CredentialOption {
	return func(s *CredentialService) {
		s.now = now
	}
}

func NewCredentialService(secret string, accessTTL time.Duration, bcryptCost int, opts ...CredentialOption) (*CredentialService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
	}

	s := &CredentialService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *CredentialService) VerifyPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a token for userID that expires accessTTL from now.
func (s *CredentialService) IssueToken(userID string) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken returns the token subject. Every failure (bad signature,
// foreign algorithm, malformed payload, missing subject, expiry) is the
// same Unauthorized error.
func (s *CredentialService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", apierror.Unauthorized("Invalid token")
	}

	if claims.Subject == "" {
		return "", apierror.Unauthorized("Invalid token")
	}

	return claims.Subject, nil
}
