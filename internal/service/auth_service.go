package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "webapp/internal/errors"
	"webapp/internal/model"
	"webapp/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the email is unknown so a miss costs
// the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

// AuthService validates Basic credentials and gates owner-scoped access.
type AuthService interface {
	// Authenticate returns the verified account owning the credentials.
	Authenticate(ctx context.Context, email, password string) (*model.Account, error)
	// AuthorizeAccount fails unless requester is the account being acted upon.
	AuthorizeAccount(requester *model.Account, accountID uint) error
}

type authService struct {
	accountRepo repository.AccountRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(accountRepo repository.AccountRepository) AuthService {
	return &authService{accountRepo: accountRepo}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.accountRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, dbError("find account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !account.Verified {
		return nil, apperrors.ErrAccountNotVerified
	}
	return account, nil
}

func (s *authService) AuthorizeAccount(requester *model.Account, accountID uint) error {
	if requester == nil || requester.ID != accountID {
		return apperrors.ErrForbidden
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dbError marks a persistence failure as a backend outage for the HTTP layer.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrDatabaseUnavailable, err)
}
