package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/password"
	"github.com/sbilibin2017/gw-blog/internal/services"
	"github.com/sbilibin2017/gw-blog/internal/validation"
)

const internalError = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// decodeJSON reads the request body into v. An empty body decodes as {}.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

var errInvalidID = errors.New("id must be a non-negative integer")

// pathID parses a URL parameter made only of digits.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, errInvalidID
		}
	}
	return strconv.ParseInt(raw, 10, 64)
}

// NewNotFoundHandler answers unknown routes with a JSON error.
func NewNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Resource %s does not exist", r.URL.Path))
	}
}

// resourceIDs carries the ids named in the request path, for error messages.
type resourceIDs struct {
	postID    int64
	commentID int64
}

// writeServiceError maps a service error onto a status code and message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, ids resourceIDs) {
	var missing *validation.MissingFieldsError

	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, missing.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		writeError(w, http.StatusBadRequest, "A user with that username and/or email already exists")
	case errors.Is(err, password.ErrTooLong):
		writeError(w, http.StatusBadRequest, "Password must be at most 72 bytes long")
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Post with an ID of %d does not exist", ids.postID))
	case errors.Is(err, services.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Comment with an ID of %d does not exist", ids.commentID))
	case errors.Is(err, services.ErrCommentPostMismatch):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Comment with an ID of %d is not on Post with an ID of %d", ids.commentID, ids.postID))
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to modify this resource")
	default:
		logger.Log.Errorw("internal server error",
			"request_id", middlewares.RequestIDFromContext(r.Context()),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, internalError)
	}
}
