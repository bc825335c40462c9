package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// cachedIdentity is what the cache keeps for a token. The password digest is never cached.
type cachedIdentity struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	DateCreated     time.Time `json:"date_created"`
	TokenExpiration time.Time `json:"token_expiration"`
}

// TokenCacheRepository maps bearer tokens to identities in Redis.
type TokenCacheRepository struct {
	client *redis.Client
}

func NewTokenCacheRepository(client *redis.Client) *TokenCacheRepository {
	return &TokenCacheRepository{client: client}
}

func tokenKey(token string) string {
	return fmt.Sprintf("auth_token:%s", token)
}

// Get returns the identity cached for token, or nil on a cache miss.
func (r *TokenCacheRepository) Get(ctx context.Context, token string) (*models.UserDB, error) {
	val, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Log.Debugw("token cache miss")
		return nil, nil
	}
	if err != nil {
		logger.Log.Debugw("token cache get failed", "error", err)
		return nil, err
	}

	var c cachedIdentity
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("decode cached identity: %w", err)
	}

	tok := token
	exp := c.TokenExpiration
	return &models.UserDB{
		ID:              c.ID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		Username:        c.Username,
		DateCreated:     c.DateCreated,
		Token:           &tok,
		TokenExpiration: &exp,
	}, nil
}

// Set caches user under its current token until the token expires.
// Users without a live token are not cached.
func (r *TokenCacheRepository) Set(ctx context.Context, user *models.UserDB) error {
	if user.Token == nil || user.TokenExpiration == nil {
		return nil
	}
	ttl := time.Until(*user.TokenExpiration)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedIdentity{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		Username:        user.Username,
		DateCreated:     user.DateCreated,
		TokenExpiration: *user.TokenExpiration,
	})
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, tokenKey(*user.Token), data, ttl).Err()
	logger.Log.Debugw("token cache set", "user_id", user.ID, "ttl", ttl, "error", err)
	return err
}

// Delete evicts token from the cache.
func (r *TokenCacheRepository) Delete(ctx context.Context, token string) error {
	err := r.client.Del(ctx, tokenKey(token)).Err()
	logger.Log.Debugw("token cache delete", "error", err)
	return err
}
