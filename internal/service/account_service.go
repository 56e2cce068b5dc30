package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	"webapp/internal/auth"
	apperrors "webapp/internal/errors"
	"webapp/internal/logging"
	"webapp/internal/model"
	"webapp/internal/notify"
	"webapp/internal/repository"
)

const accountCacheTTL = 5 * time.Minute

// ProfileCache is the part of cache.Client the account service uses.
// Writers overwrite the entry with the committed row; readers only fill an
// absent entry, so a slow read never replaces a newer write.
type ProfileCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	AddJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput carries the profile fields to overwrite; empty fields are left untouched.
type UpdateInput struct {
	FirstName string
	LastName  string
	Password  string
}

// AccountService handles the account lifecycle.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*model.Account, error)
	Verify(ctx context.Context, email, token string) error
	GetProfile(ctx context.Context, accountID uint, requester *model.Account) (*model.Account, error)
	UpdateProfile(ctx context.Context, accountID uint, requester *model.Account, in UpdateInput) (*model.Account, error)
}

type accountService struct {
	repo       repository.AccountRepository
	auth       AuthService
	tokens     *auth.VerificationTokens
	tokenStore auth.TokenStoreInterface
	publisher  notify.Publisher
	cache      ProfileCache
	baseURL    string
	log        logging.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	repo repository.AccountRepository,
	authService AuthService,
	tokens *auth.VerificationTokens,
	tokenStore auth.TokenStoreInterface,
	publisher notify.Publisher,
	cache ProfileCache,
	baseURL string,
	log logging.Logger,
) AccountService {
	return &accountService{
		repo:       repo,
		auth:       authService,
		tokens:     tokens,
		tokenStore: tokenStore,
		publisher:  publisher,
		cache:      cache,
		baseURL:    baseURL,
		log:        log,
	}
}

func (s *accountService) cacheKey(id uint) string {
	return fmt.Sprintf("account:%d", id)
}

// Register persists an unverified account and publishes its verification link.
// A failed publish is reported to the caller but the account stays persisted.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError("check account existence", err)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Verified:     false,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, dbError("create account", err)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, err
	}

	msg := notify.VerificationMessage{
		Email:     email,
		FirstName: account.FirstName,
		Link:      s.verificationLink(email, token),
		Token:     token,
	}
	if err := s.publisher.PublishVerification(ctx, msg); err != nil {
		s.log.Error(ctx, "verification dispatch failed", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNotificationFailed, err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func (s *accountService) verificationLink(email, token string) string {
	q := url.Values{}
	q.Set("user", email)
	q.Set("token", token)
	return s.baseURL + "/users/verify?" + q.Encode()
}

// Verify checks token against email and marks the account verified.
func (s *accountService) Verify(ctx context.Context, email, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)
	if claims.Email != email {
		return apperrors.ErrTokenEmailMismatch
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return dbError("find account", err)
	}

	if !s.tokenStore.Consume(ctx, claims.ID, s.tokens.MaxAge()) {
		return apperrors.ErrTokenUsed
	}

	if err := s.repo.MarkVerified(ctx, account.ID); err != nil {
		s.tokenStore.Release(ctx, claims.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return dbError("mark verified", err)
	}
	s.refreshCache(ctx, account.ID)

	s.log.Info(ctx, "account verified", "account_id", account.ID)
	return nil
}

// GetProfile returns the account when requester owns it.
func (s *accountService) GetProfile(ctx context.Context, accountID uint, requester *model.Account) (*model.Account, error) {
	if err := s.auth.AuthorizeAccount(requester, accountID); err != nil {
		return nil, err
	}

	var cached model.Account
	if s.cache.GetJSON(ctx, s.cacheKey(accountID), &cached) {
		return &cached, nil
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.cache.AddJSON(ctx, s.cacheKey(accountID), account, accountCacheTTL)
	return account, nil
}

// UpdateProfile overwrites the supplied fields and returns the refreshed account.
func (s *accountService) UpdateProfile(ctx context.Context, accountID uint, requester *model.Account, in UpdateInput) (*model.Account, error) {
	if err := s.auth.AuthorizeAccount(requester, accountID); err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != "" {
		account.FirstName = in.FirstName
	}
	if in.LastName != "" {
		account.LastName = in.LastName
	}
	if in.Password != "" {
		hashed, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hashed
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, dbError("update account", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(accountID), account, accountCacheTTL)

	return account, nil
}

func (s *accountService) findAccount(ctx context.Context, id uint) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, dbError("find account", err)
	}
	return account, nil
}

// refreshCache overwrites the cached profile with the stored row, or drops it
// when the row cannot be read back.
func (s *accountService) refreshCache(ctx context.Context, id uint) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.cache.Delete(ctx, s.cacheKey(id))
		return
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), account, accountCacheTTL)
}
