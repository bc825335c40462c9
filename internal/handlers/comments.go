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

//go:generate mockgen -source=comments.go -destination=comments_mock.go -package=handlers

// CommentWriter defines the interface that the comment service must implement.
type CommentWriter interface {
	Create(ctx context.Context, identity *models.UserDB, postID int64, body string) (*models.CommentResponse, error)
	Delete(ctx context.Context, identity *models.UserDB, postID, commentID int64) error
}

// NewCreateCommentHandler returns an HTTP handler adding a comment to a post.
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param postID path int true "Post ID"
// @Param comment body models.CommentCreateRequest true "Comment"
// @Success 201 {object} models.CommentResponse "Created comment"
// @Failure 400 {object} models.ErrorResponse "Missing fields / invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Post does not exist"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts/{postID}/comments [post]
// @Security BearerAuth
func NewCreateCommentHandler(svc CommentWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}
		postID, ok := postIDParam(w, r)
		if !ok {
			return
		}

		var req models.CommentCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if err := validation.Required(&req); err != nil {
			writeServiceError(w, r, err, resourceIDs{postID: postID})
			return
		}

		comment, err := svc.Create(r.Context(), identity, postID, *req.Body)
		if err != nil {
			writeServiceError(w, r, err, resourceIDs{postID: postID})
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	}
}

// NewDeleteCommentHandler returns an HTTP handler deleting the caller's comment.
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Param postID path int true "Post ID"
// @Param commentID path int true "Comment ID"
// @Success 200 {object} models.SuccessResponse "Deleted"
// @Failure 400 {object} models.ErrorResponse "Comment is not on this post"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Not the author"
// @Failure 404 {object} models.ErrorResponse "Post or comment does not exist"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /posts/{postID}/comments/{commentID} [delete]
// @Security BearerAuth
func NewDeleteCommentHandler(svc CommentWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middlewares.IdentityFromContext(r.Context())
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized Access")
			return
		}
		postID, ok := postIDParam(w, r)
		if !ok {
			return
		}
		commentID, err := pathID(r, "commentID")
		if err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Comment with an ID of %s does not exist", chi.URLParam(r, "commentID")))
			return
		}

		ids := resourceIDs{postID: postID, commentID: commentID}
		if err := svc.Delete(r.Context(), identity, postID, commentID); err != nil {
			writeServiceError(w, r, err, ids)
			return
		}
		writeJSON(w, http.StatusOK, models.SuccessResponse{
			Success: fmt.Sprintf("Comment with an ID of %d has been deleted", commentID),
		})
	}
}
