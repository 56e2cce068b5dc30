package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "webapp/internal/errors"
)

// VerificationClaims is the payload of an email verification token.
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// VerificationTokens issues and validates HS256-signed, time-limited
// verification tokens. Age is measured from the issued-at claim so the
// maximum age is enforced at validation time.
type VerificationTokens struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewVerificationTokens creates a token service with the given secret and max age.
func NewVerificationTokens(secret string, maxAge time.Duration) *VerificationTokens {
	return &VerificationTokens{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// MaxAge returns how long an issued token stays valid.
func (s *VerificationTokens) MaxAge() time.Duration {
	return s.maxAge
}

// Issue signs a token binding email to the current time.
func (s *VerificationTokens) Issue(email string) (string, error) {
	claims := &VerificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and age and returns the embedded claims.
func (s *VerificationTokens) Validate(tokenString string) (*VerificationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*VerificationClaims)
	if !ok || !token.Valid || claims.IssuedAt == nil || claims.Email == "" {
		return nil, apperrors.ErrInvalidToken
	}

	if s.now().Sub(claims.IssuedAt.Time) > s.maxAge {
		return nil, apperrors.ErrTokenExpired
	}
	return claims, nil
}
