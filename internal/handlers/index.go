package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sbilibin2017/gw-blog/internal/logger"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Route describes one endpoint on the index page.
type Route struct {
	Method      string
	Path        string
	Auth        string
	Description string
}

// Routes lists the public API in the order it is shown on the index page.
var Routes = []Route{
	{"POST", "/users", "-", "Register a user"},
	{"GET", "/token", "Basic", "Get a bearer token"},
	{"GET", "/users/me", "Bearer", "Current user"},
	{"GET", "/posts?search=", "-", "List posts"},
	{"GET", "/posts/{postID}", "-", "Get a post"},
	{"POST", "/posts", "Bearer", "Create a post"},
	{"PUT", "/posts/{postID}", "Bearer, author", "Update a post"},
	{"DELETE", "/posts/{postID}", "Bearer, author", "Delete a post"},
	{"POST", "/posts/{postID}/comments", "Bearer", "Comment on a post"},
	{"DELETE", "/posts/{postID}/comments/{commentID}", "Bearer, author", "Delete a comment"},
}

// NewIndexHandler returns an HTTP handler rendering the API overview page.
func NewIndexHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := indexTemplate.Execute(&buf, struct {
			Name   string
			Routes []Route
		}{name, Routes})
		if err != nil {
			logger.Log.Errorw("failed to render index", "error", err)
			http.Error(w, internalError, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
