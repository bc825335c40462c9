package middlewares

import (
	"mime"
	"net/http"
)

// RequireJSON rejects POST, PUT and PATCH requests whose body is not declared as JSON.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				writeError(w, http.StatusBadRequest, "Your content-type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
