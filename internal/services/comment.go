package services

import (
	"context"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

//go:generate mockgen -source=comment.go -destination=comment_mock.go -package=services

// CommentWriter defines write operations for comments.
type CommentWriter interface {
	Create(ctx context.Context, comment *models.CommentDB) error
	Delete(ctx context.Context, id int64) error
}

// CommentService handles comment business logic.
type CommentService struct {
	posts    PostReader
	comments CommentReader
	writer   CommentWriter
	events   eventPublisher
}

// NewCommentService creates a new CommentService. kafkaWriter may be nil.
func NewCommentService(posts PostReader, comments CommentReader, writer CommentWriter, kafkaWriter KafkaWriter) *CommentService {
	return &CommentService{
		posts:    posts,
		comments: comments,
		writer:   writer,
		events:   eventPublisher{writer: kafkaWriter},
	}
}

// Create adds a comment by identity to an existing post.
func (s *CommentService) Create(ctx context.Context, identity *models.UserDB, postID int64, body string) (*models.CommentResponse, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.CommentDB{
		Body:   body,
		UserID: identity.ID,
		PostID: postID,
		User:   models.AuthorDB(identity.ToAuthor()),
	}
	if err := s.writer.Create(ctx, comment); err != nil {
		logger.Log.Errorw("failed to create comment", "post_id", postID, "user_id", identity.ID, "error", err)
		return nil, err
	}

	s.events.publish(ctx, models.EventCommentCreated, identity.ID, comment.ID)

	resp := comment.ToResponse()
	return &resp, nil
}

// Delete removes a comment written by identity from the given post.
func (s *CommentService) Delete(ctx context.Context, identity *models.UserDB, postID, commentID int64) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		logger.Log.Errorw("failed to get comment", "comment_id", commentID, "error", err)
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.PostID != postID {
		logger.Log.Infow("comment/post mismatch", "comment_id", commentID, "post_id", postID, "actual_post_id", comment.PostID)
		return ErrCommentPostMismatch
	}
	if !IsOwner(identity, comment) {
		logger.Log.Infow("comment delete forbidden", "comment_id", commentID, "user_id", identity.ID)
		return ErrForbidden
	}

	if err := s.writer.Delete(ctx, commentID); err != nil {
		logger.Log.Errorw("failed to delete comment", "comment_id", commentID, "error", err)
		return err
	}

	s.events.publish(ctx, models.EventCommentDeleted, identity.ID, commentID)
	return nil
}

func (s *CommentService) requirePost(ctx context.Context, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", postID, "error", err)
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	return nil
}
