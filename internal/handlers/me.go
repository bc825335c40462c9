package handlers

import (
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/middlewares"
)

// NewMeHandler returns an HTTP handler describing the authenticated user.
// @Summary Current user
// @Description Returns the user the bearer token belongs to.
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse "Current user"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /users/me [get]
// @Security BearerAuth
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}
		writeJSON(w, http.StatusOK, identity.ToResponse())
	}
}
