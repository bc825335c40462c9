package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

// Authenticator extracts credentials from a request and resolves them to a user.
// A nil user with a nil error means the credentials were missing or rejected.
type Authenticator interface {
	Authenticate(r *http.Request) (*models.UserDB, error)
	Challenge() string
}

// BasicVerifier checks a username and password.
type BasicVerifier interface {
	VerifyBasic(ctx context.Context, username, password string) (*models.UserDB, error)
}

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.UserDB, error)
}

const realm = `realm="Authentication Required"`

// BasicAuthenticator reads "Authorization: Basic" credentials.
type BasicAuthenticator struct {
	verifier BasicVerifier
}

// NewBasicAuthenticator creates a BasicAuthenticator.
func NewBasicAuthenticator(verifier BasicVerifier) *BasicAuthenticator {
	return &BasicAuthenticator{verifier: verifier}
}

// Authenticate implements Authenticator.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*models.UserDB, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, nil
	}
	return a.verifier.VerifyBasic(r.Context(), username, password)
}

// Challenge implements Authenticator.
func (a *BasicAuthenticator) Challenge() string {
	return "Basic " + realm
}

// BearerAuthenticator reads "Authorization: Bearer" tokens.
type BearerAuthenticator struct {
	verifier TokenVerifier
}

// NewBearerAuthenticator creates a BearerAuthenticator.
func NewBearerAuthenticator(verifier TokenVerifier) *BearerAuthenticator {
	return &BearerAuthenticator{verifier: verifier}
}

// Authenticate implements Authenticator.
func (a *BearerAuthenticator) Authenticate(r *http.Request) (*models.UserDB, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, nil
	}
	return a.verifier.VerifyToken(r.Context(), token)
}

// Challenge implements Authenticator.
func (a *BearerAuthenticator) Challenge() string {
	return "Bearer " + realm
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware rejects requests the authenticator does not accept and
// stores the authenticated user in the request context.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r)
			if err != nil {
				logger.Log.Errorw("authentication failed", "request_id", RequestIDFromContext(r.Context()), "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if user == nil {
				logger.Log.Infow("unauthorized request", "method", r.Method, "uri", r.RequestURI)
				w.Header().Set("WWW-Authenticate", a.Challenge())
				writeError(w, http.StatusUnauthorized, "Unauthorized Access")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
		})
	}
}
