package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

//go:generate mockgen -source=token.go -destination=token_mock.go -package=services

// DefaultTokenTTL is how long a freshly issued token stays valid.
const DefaultTokenTTL = time.Hour

// DefaultTokenReuseWindow is the minimum remaining lifetime for a token to be handed out again.
const DefaultTokenReuseWindow = time.Minute

const tokenBytes = 32

// TokenStore persists tokens on user rows.
type TokenStore interface {
	LockByID(ctx context.Context, id int64) (*models.UserDB, error)
	SaveToken(ctx context.Context, id int64, token string, expiration time.Time) error
	GetByToken(ctx context.Context, token string) (*models.UserDB, error)
}

// TokenCache caches token to identity lookups.
type TokenCache interface {
	Get(ctx context.Context, token string) (*models.UserDB, error) // nil on miss
	Set(ctx context.Context, user *models.UserDB) error
	Delete(ctx context.Context, token string) error
}

// TokenManager issues, reuses and resolves opaque bearer tokens.
type TokenManager struct {
	store       TokenStore
	cache       TokenCache
	ttl         time.Duration
	reuseWindow time.Duration
	now         func() time.Time
	generate    func() (string, error)
	afterCommit func(ctx context.Context, fn func())
}

// NewTokenManager creates a TokenManager. cache may be nil.
func NewTokenManager(store TokenStore, cache TokenCache, ttl, reuseWindow time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if reuseWindow < 0 || reuseWindow >= ttl {
		reuseWindow = DefaultTokenReuseWindow
	}
	return &TokenManager{
		store:       store,
		cache:       cache,
		ttl:         ttl,
		reuseWindow: reuseWindow,
		now:         time.Now,
		generate:    generateToken,
		afterCommit: func(_ context.Context, fn func()) { fn() },
	}
}

// WithAfterCommit sets how work that must wait for the surrounding transaction is scheduled.
func (m *TokenManager) WithAfterCommit(hook func(ctx context.Context, fn func())) *TokenManager {
	if hook != nil {
		m.afterCommit = hook
	}
	return m
}

// generateToken returns 32 random bytes, hex encoded.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IssueOrReuse returns the user's token if it stays valid for longer than the
// reuse window, and otherwise stores and returns a new one.
// The read-check-write runs on a locked row, so callers must be inside a transaction.
func (m *TokenManager) IssueOrReuse(ctx context.Context, userID int64) (models.TokenResponse, error) {
	user, err := m.store.LockByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to lock user for token issue", "user_id", userID, "error", err)
		return models.TokenResponse{}, err
	}
	if user == nil {
		return models.TokenResponse{}, ErrUserDoesNotExist
	}

	now := m.now()
	if user.TokenValidUntil(now.Add(m.reuseWindow)) {
		logger.Log.Debugw("reusing token", "user_id", userID, "expires", *user.TokenExpiration)
		return models.TokenResponse{Token: *user.Token, TokenExpiration: *user.TokenExpiration}, nil
	}

	token, err := m.generate()
	if err != nil {
		logger.Log.Errorw("failed to generate token", "error", err)
		return models.TokenResponse{}, err
	}
	expiration := now.Add(m.ttl).UTC()

	if err := m.store.SaveToken(ctx, userID, token, expiration); err != nil {
		logger.Log.Errorw("failed to save token", "user_id", userID, "error", err)
		return models.TokenResponse{}, err
	}

	if m.cache != nil && user.Token != nil {
		previous := *user.Token
		m.afterCommit(ctx, func() {
			if err := m.cache.Delete(ctx, previous); err != nil {
				logger.Log.Warnw("failed to evict previous token from cache", "user_id", userID, "error", err)
			}
		})
	}

	logger.Log.Infow("issued token", "user_id", userID, "expires", expiration)
	return models.TokenResponse{Token: token, TokenExpiration: expiration}, nil
}

// Resolve returns the user holding token while the token is unexpired, or nil.
// Expired tokens are left in place; they simply stop resolving.
func (m *TokenManager) Resolve(ctx context.Context, token string) (*models.UserDB, error) {
	if token == "" {
		return nil, nil
	}
	now := m.now()

	if m.cache != nil {
		user, err := m.cache.Get(ctx, token)
		if err != nil {
			logger.Log.Warnw("token cache lookup failed", "error", err)
		}
		if user != nil && user.TokenValidUntil(now) {
			return user, nil
		}
	}

	user, err := m.store.GetByToken(ctx, token)
	if err != nil {
		logger.Log.Errorw("failed to look up token", "error", err)
		return nil, err
	}
	if user == nil || !user.TokenValidUntil(now) {
		return nil, nil
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, user); err != nil {
			logger.Log.Warnw("failed to cache token", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}
