package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/repositories"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user *models.UserDB) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
}

// TokenResolver resolves a bearer token to its holder.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.UserDB, error)
}

// AuthService handles registration and both credential checks.
type AuthService struct {
	reader UserReader
	writer UserWriter
	hasher PasswordHasher
	tokens TokenResolver
	events eventPublisher
}

// NewAuthService creates a new AuthService instance. kafkaWriter may be nil.
func NewAuthService(reader UserReader, writer UserWriter, hasher PasswordHasher, tokens TokenResolver, kafkaWriter KafkaWriter) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		hasher: hasher,
		tokens: tokens,
		events: eventPublisher{writer: kafkaWriter},
	}
}

// Register creates a user. The password is hashed before anything is stored.
func (svc *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserDB, error) {
	user := &models.UserDB{
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Username:  deref(req.Username),
		Email:     deref(req.Email),
	}

	exists, err := svc.reader.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if exists {
		logger.Log.Infow("user already exists", "username", user.Username, "email", user.Email)
		return nil, ErrUserAlreadyExists
	}

	user.Password, err = svc.hasher.Hash(deref(req.Password))
	if err != nil {
		logger.Log.Warnw("failed to hash password", "err", err)
		return nil, err
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			logger.Log.Infow("user already exists", "username", user.Username, "email", user.Email)
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	svc.events.publish(ctx, models.EventUserRegistered, user.ID, user.ID)
	return user, nil
}

// VerifyBasic returns the user matching username and password, or nil.
func (svc *AuthService) VerifyBasic(ctx context.Context, username, password string) (*models.UserDB, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		logger.Log.Infow("user does not exist", "username", username)
		return nil, nil
	}
	if !svc.hasher.Verify(user.Password, password) {
		logger.Log.Infow("invalid credentials", "username", username)
		return nil, nil
	}
	return user, nil
}

// VerifyToken returns the holder of a live bearer token, or nil.
func (svc *AuthService) VerifyToken(ctx context.Context, token string) (*models.UserDB, error) {
	return svc.tokens.Resolve(ctx, token)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
