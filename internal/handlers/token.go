package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

//go:generate mockgen -source=token.go -destination=token_mock.go -package=handlers

// TokenIssuer defines the interface that the token manager must implement.
type TokenIssuer interface {
	IssueOrReuse(ctx context.Context, userID int64) (models.TokenResponse, error)
}

// NewTokenHandler returns an HTTP handler that hands out a bearer token.
// @Summary Get a bearer token
// @Description Returns the caller's current token while it has more than a minute left, otherwise issues a new one valid for an hour.
// @Tags auth
// @Produce json
// @Success 200 {object} models.TokenResponse "Bearer token"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /token [get]
// @Security BasicAuth
func NewTokenHandler(issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}

		token, err := issuer.IssueOrReuse(r.Context(), identity.ID)
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{})
			return
		}

		writeJSON(w, http.StatusOK, token)
	}
}
