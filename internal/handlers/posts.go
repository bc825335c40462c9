package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/models"
	"github.com/sbilibin2017/gw-blog/internal/validation"
)

//go:generate mockgen -source=posts.go -destination=posts_mock.go -package=handlers

// PostReader defines the read side of the post service.
type PostReader interface {
	Get(ctx context.Context, id int64) (*models.PostResponse, error)
	List(ctx context.Context, search string) ([]models.PostResponse, error)
}

// PostWriter defines the write side of the post service.
type PostWriter interface {
	Create(ctx context.Context, identity *models.UserDB, title, body string) (*models.PostResponse, error)
	Update(ctx context.Context, identity *models.UserDB, id int64, upd models.PostUpdateRequest) (*models.PostResponse, error)
	Delete(ctx context.Context, identity *models.UserDB, id int64) error
}

// NewListPostsHandler returns an HTTP handler listing posts.
// @Summary List posts
// @Description Returns every post with its comments, newest first. search filters by a case-insensitive substring of the title.
// @Tags posts
// @Produce json
// @Param search query string false "Title substring"
// @Success 200 {array} models.PostResponse "Posts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts [get]
func NewListPostsHandler(svc PostReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{})
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

// NewGetPostHandler returns an HTTP handler fetching one post.
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} models.PostResponse "Post"
// @Failure 404 {object} models.ErrorResponse "Post does not exist"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts/{postID} [get]
func NewGetPostHandler(svc PostReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postIDParam(w, r)
		if !ok {
			return
		}

		post, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{postID: id})
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// NewCreatePostHandler returns an HTTP handler creating a post owned by the caller.
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body models.PostCreateRequest true "Post"
// @Success 201 {object} models.PostResponse "Created post"
// @Failure 400 {object} models.ErrorResponse "Missing fields / invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts [post]
// @Security BearerAuth
func NewCreatePostHandler(svc PostWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}

		var req models.PostCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if err := validation.Required(&req); err != nil {
			writeServiceError(w, r, err, resourceIDs{})
			return
		}

		post, err := svc.Create(r.Context(), identity, *req.Title, *req.Body)
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{})
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// NewUpdatePostHandler returns an HTTP handler editing a post owned by the caller.
// @Summary Update a post
// @Description Only title and body are applied; any other field is ignored.
// @Tags posts
// @Accept json
// @Produce json
// @Param postID path int true "Post ID"
// @Param post body models.PostUpdateRequest true "Fields to change"
// @Success 200 {object} models.PostResponse "Updated post"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Not the author"
// @Failure 404 {object} models.ErrorResponse "Post does not exist"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts/{postID} [put]
// @Security BearerAuth
func NewUpdatePostHandler(svc PostWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}
		id, ok := postIDParam(w, r)
		if !ok {
			return
		}

		var req models.PostUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		post, err := svc.Update(r.Context(), identity, id, req)
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{postID: id})
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// NewDeletePostHandler returns an HTTP handler deleting a post owned by the caller.
// @Summary Delete a post
// @Description Comments on the post are deleted with it.
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} models.SuccessResponse "Deleted"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Not the author"
// @Failure 404 {object} models.ErrorResponse "Post does not exist"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts/{postID} [delete]
// @Security BearerAuth
func NewDeletePostHandler(svc PostWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}
		id, ok := postIDParam(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), identity, id); err != nil {
			writeServiceError(w, r, err, resourceIDs{postID: id})
			return
		}
		writeJSON(w, http.StatusOK, models.SuccessResponse{
			Success: fmt.Sprintf("Post with an ID of %d has been deleted", id),
		})
	}
}

func postIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Post with an ID of %s does not exist", chi.URLParam(r, "postID")))
		return 0, false
	}
	return id, true
}
