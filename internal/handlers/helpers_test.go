package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// newRequest builds a request carrying chi URL params and, when identity is
// set, the authenticated user.
func newRequest(method, target string, body io.Reader, identity *models.UserDB, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if identity != nil {
		ctx = middlewares.WithIdentity(ctx, identity)
	}
	return req.WithContext(ctx)
}
