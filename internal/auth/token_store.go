package auth

import (
	"context"
	"time"

	"webapp/internal/cache"
)

const usedTokenKeyPrefix = "verification:used:"

// TokenStoreInterface records verification tokens that were already redeemed.
type TokenStoreInterface interface {
	// Consume reports whether tokenID is redeemed for the first time.
	Consume(ctx context.Context, tokenID string, ttl time.Duration) bool
	// Release returns a consumed token so it can be redeemed again.
	Release(ctx context.Context, tokenID string)
}

// TokenStore keeps redeemed token ids in Redis until they would expire anyway.
// It is best-effort: without Redis every token is treated as unused.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// Consume claims tokenID for ttl.
func (s *TokenStore) Consume(ctx context.Context, tokenID string, ttl time.Duration) bool {
	if tokenID == "" {
		return true
	}
	return s.cache.Claim(ctx, usedTokenKeyPrefix+tokenID, ttl)
}

// Release forgets tokenID after a redemption that did not complete.
func (s *TokenStore) Release(ctx context.Context, tokenID string) {
	if tokenID == "" {
		return
	}
	s.cache.Delete(ctx, usedTokenKeyPrefix+tokenID)
}
