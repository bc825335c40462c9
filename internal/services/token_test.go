package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newTestTokenManager(store TokenStore, cache TokenCache, now time.Time) *TokenManager {
	m := NewTokenManager(store, cache, DefaultTokenTTL, DefaultTokenReuseWindow)
	m.now = func() time.Time { return now }
	m.generate = func() (string, error) { return "fresh-token", nil }
	return m
}

func TestNewTokenManager_Defaults(t *testing.T) {
	m := NewTokenManager(nil, nil, 0, -time.Second)
	assert.Equal(t, DefaultTokenTTL, m.ttl)
	assert.Equal(t, DefaultTokenReuseWindow, m.reuseWindow)

	m = NewTokenManager(nil, nil, time.Minute, time.Hour)
	assert.Equal(t, time.Minute, m.ttl)
	assert.Equal(t, DefaultTokenReuseWindow, m.reuseWindow)
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken()
	require.NoError(t, err)
	b, err := generateToken()
	require.NoError(t, err)

	assert.Len(t, a, tokenBytes*2)
	assert.NotEqual(t, a, b)
}

func TestTokenManager_IssueOrReuse(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		user       *models.UserDB
		lockErr    error
		saveErr    error
		expectSave bool
		evict      string
		want       models.TokenResponse
		wantErr    error
	}{
		{
			name:       "first token",
			user:       &models.UserDB{ID: 1},
			expectSave: true,
			want:       models.TokenResponse{Token: "fresh-token", TokenExpiration: now.Add(time.Hour)},
		},
		{
			name: "reuse token valid beyond window",
			user: &models.UserDB{ID: 1, Token: strPtr("old"), TokenExpiration: timePtr(now.Add(30 * time.Minute))},
			want: models.TokenResponse{Token: "old", TokenExpiration: now.Add(30 * time.Minute)},
		},
		{
			name:       "reissue token expiring within window",
			user:       &models.UserDB{ID: 1, Token: strPtr("old"), TokenExpiration: timePtr(now.Add(30 * time.Second))},
			expectSave: true,
			evict:      "old",
			want:       models.TokenResponse{Token: "fresh-token", TokenExpiration: now.Add(time.Hour)},
		},
		{
			name:       "reissue token expiring exactly at window edge",
			user:       &models.UserDB{ID: 1, Token: strPtr("old"), TokenExpiration: timePtr(now.Add(time.Minute))},
			expectSave: true,
			evict:      "old",
			want:       models.TokenResponse{Token: "fresh-token", TokenExpiration: now.Add(time.Hour)},
		},
		{
			name:       "reissue expired token",
			user:       &models.UserDB{ID: 1, Token: strPtr("old"), TokenExpiration: timePtr(now.Add(-time.Hour))},
			expectSave: true,
			evict:      "old",
			want:       models.TokenResponse{Token: "fresh-token", TokenExpiration: now.Add(time.Hour)},
		},
		{
			name:    "user missing",
			wantErr: ErrUserDoesNotExist,
		},
		{
			name:    "lock error",
			lockErr: errors.New("db error"),
			wantErr: errors.New("db error"),
		},
		{
			name:       "save error",
			user:       &models.UserDB{ID: 1},
			expectSave: true,
			saveErr:    errors.New("save error"),
			wantErr:    errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockTokenStore(ctrl)
			cache := NewMockTokenCache(ctrl)
			m := newTestTokenManager(store, cache, now)

			store.EXPECT().LockByID(gomock.Any(), int64(1)).Return(tt.user, tt.lockErr)
			if tt.expectSave {
				store.EXPECT().
					SaveToken(gomock.Any(), int64(1), "fresh-token", now.Add(time.Hour)).
					Return(tt.saveErr)
			}
			if tt.evict != "" {
				cache.EXPECT().Delete(gomock.Any(), tt.evict).Return(nil)
			}

			got, err := m.IssueOrReuse(context.Background(), 1)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenManager_IssueOrReuse_CacheEvictionFailureIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	store := NewMockTokenStore(ctrl)
	cache := NewMockTokenCache(ctrl)
	m := newTestTokenManager(store, cache, now)

	store.EXPECT().LockByID(gomock.Any(), int64(7)).
		Return(&models.UserDB{ID: 7, Token: strPtr("stale"), TokenExpiration: timePtr(now)}, nil)
	store.EXPECT().SaveToken(gomock.Any(), int64(7), "fresh-token", gomock.Any()).Return(nil)
	cache.EXPECT().Delete(gomock.Any(), "stale").Return(errors.New("redis down"))

	got, err := m.IssueOrReuse(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", got.Token)
}

func TestTokenManager_IssueOrReuse_EvictsAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	store := NewMockTokenStore(ctrl)
	cache := NewMockTokenCache(ctrl)

	var pending []func()
	m := newTestTokenManager(store, cache, now).WithAfterCommit(func(_ context.Context, fn func()) {
		pending = append(pending, fn)
	})

	store.EXPECT().LockByID(gomock.Any(), int64(7)).
		Return(&models.UserDB{ID: 7, Token: strPtr("stale"), TokenExpiration: timePtr(now)}, nil)
	store.EXPECT().SaveToken(gomock.Any(), int64(7), "fresh-token", gomock.Any()).Return(nil)

	got, err := m.IssueOrReuse(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", got.Token)
	require.Len(t, pending, 1)

	cache.EXPECT().Delete(gomock.Any(), "stale").Return(nil)
	pending[0]()
}

func TestTokenManager_WithAfterCommit_NilKeepsDefault(t *testing.T) {
	m := NewTokenManager(nil, nil, 0, 0).WithAfterCommit(nil)

	ran := false
	m.afterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestTokenManager_IssueOrReuse_GenerateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockTokenStore(ctrl)
	m := newTestTokenManager(store, nil, time.Now())
	m.generate = func() (string, error) { return "", errors.New("entropy") }

	store.EXPECT().LockByID(gomock.Any(), int64(1)).Return(&models.UserDB{ID: 1}, nil)

	_, err := m.IssueOrReuse(context.Background(), 1)
	assert.EqualError(t, err, "entropy")
}

func TestTokenManager_Resolve(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	valid := &models.UserDB{ID: 3, Token: strPtr("tok"), TokenExpiration: timePtr(now.Add(time.Minute))}
	expired := &models.UserDB{ID: 3, Token: strPtr("tok"), TokenExpiration: timePtr(now.Add(-time.Second))}
	atNow := &models.UserDB{ID: 3, Token: strPtr("tok"), TokenExpiration: timePtr(now)}

	tests := []struct {
		name     string
		cached   *models.UserDB
		cacheErr error
		stored   *models.UserDB
		storeErr error
		lookupDB bool
		setCache bool
		want     *models.UserDB
		wantErr  bool
	}{
		{
			name:   "cache hit",
			cached: valid,
			want:   valid,
		},
		{
			name:     "cache miss, db hit is cached",
			lookupDB: true,
			stored:   valid,
			setCache: true,
			want:     valid,
		},
		{
			name:     "cache error falls back to db",
			cacheErr: errors.New("redis down"),
			lookupDB: true,
			stored:   valid,
			setCache: true,
			want:     valid,
		},
		{
			name:     "expired cache entry is rechecked",
			cached:   expired,
			lookupDB: true,
			stored:   expired,
		},
		{
			name:     "unknown token",
			lookupDB: true,
		},
		{
			name:     "expiration equal to now is rejected",
			lookupDB: true,
			stored:   atNow,
		},
		{
			name:     "db error",
			lookupDB: true,
			storeErr: errors.New("db error"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockTokenStore(ctrl)
			cache := NewMockTokenCache(ctrl)
			m := newTestTokenManager(store, cache, now)

			cache.EXPECT().Get(gomock.Any(), "tok").Return(tt.cached, tt.cacheErr)
			if tt.lookupDB {
				store.EXPECT().GetByToken(gomock.Any(), "tok").Return(tt.stored, tt.storeErr)
			}
			if tt.setCache {
				cache.EXPECT().Set(gomock.Any(), tt.stored).Return(nil)
			}

			got, err := m.Resolve(context.Background(), "tok")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenManager_Resolve_EmptyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newTestTokenManager(NewMockTokenStore(ctrl), NewMockTokenCache(ctrl), time.Now())

	got, err := m.Resolve(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokenManager_Resolve_WithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	store := NewMockTokenStore(ctrl)
	m := newTestTokenManager(store, nil, now)

	user := &models.UserDB{ID: 9, Token: strPtr("tok"), TokenExpiration: timePtr(now.Add(time.Hour))}
	store.EXPECT().GetByToken(gomock.Any(), "tok").Return(user, nil)

	got, err := m.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}
