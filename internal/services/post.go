package services

import (
	"context"

	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

//go:generate mockgen -source=post.go -destination=post_mock.go -package=services

// PostReader defines read operations for posts.
type PostReader interface {
	GetByID(ctx context.Context, id int64) (*models.PostDB, error)
	List(ctx context.Context, search string) ([]*models.PostDB, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Create(ctx context.Context, post *models.PostDB) error
	Update(ctx context.Context, post *models.PostDB) error
	Delete(ctx context.Context, id int64) error
}

// CommentReader defines read operations for comments.
type CommentReader interface {
	GetByID(ctx context.Context, id int64) (*models.CommentDB, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) ([]*models.CommentDB, error)
}

// PostService handles post business logic.
type PostService struct {
	posts    PostReader
	writer   PostWriter
	comments CommentReader
	events   eventPublisher
}

// NewPostService creates a new PostService. kafkaWriter may be nil.
func NewPostService(posts PostReader, writer PostWriter, comments CommentReader, kafkaWriter KafkaWriter) *PostService {
	return &PostService{
		posts:    posts,
		writer:   writer,
		comments: comments,
		events:   eventPublisher{writer: kafkaWriter},
	}
}

// Create stores a post owned by identity.
func (s *PostService) Create(ctx context.Context, identity *models.UserDB, title, body string) (*models.PostResponse, error) {
	post := &models.PostDB{
		Title:  title,
		Body:   body,
		UserID: identity.ID,
		Author: models.AuthorDB(identity.ToAuthor()),
	}

	if err := s.writer.Create(ctx, post); err != nil {
		logger.Log.Errorw("failed to create post", "user_id", identity.ID, "error", err)
		return nil, err
	}

	s.events.publish(ctx, models.EventPostCreated, identity.ID, post.ID)

	resp := post.ToResponse(nil)
	return &resp, nil
}

// Get returns one post with its comments.
func (s *PostService) Get(ctx context.Context, id int64) (*models.PostResponse, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withComments(ctx, post)
}

// List returns posts whose title contains search, case-insensitively.
func (s *PostService) List(ctx context.Context, search string) ([]models.PostResponse, error) {
	posts, err := s.posts.List(ctx, search)
	if err != nil {
		logger.Log.Errorw("failed to list posts", "search", search, "error", err)
		return nil, err
	}

	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	comments, err := s.comments.ListByPostIDs(ctx, ids)
	if err != nil {
		logger.Log.Errorw("failed to list comments", "error", err)
		return nil, err
	}

	byPost := make(map[int64][]*models.CommentDB, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	resp := make([]models.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, p.ToResponse(byPost[p.ID]))
	}
	return resp, nil
}

// Update applies the allow-listed fields of upd to a post owned by identity.
func (s *PostService) Update(ctx context.Context, identity *models.UserDB, id int64, upd models.PostUpdateRequest) (*models.PostResponse, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsOwner(identity, post) {
		logger.Log.Infow("post update forbidden", "post_id", id, "user_id", identity.ID)
		return nil, ErrForbidden
	}

	if post.ApplyUpdate(upd) {
		if err := s.writer.Update(ctx, post); err != nil {
			logger.Log.Errorw("failed to update post", "post_id", id, "error", err)
			return nil, err
		}
		s.events.publish(ctx, models.EventPostUpdated, identity.ID, post.ID)
	}

	return s.withComments(ctx, post)
}

// Delete removes a post owned by identity.
func (s *PostService) Delete(ctx context.Context, identity *models.UserDB, id int64) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !IsOwner(identity, post) {
		logger.Log.Infow("post delete forbidden", "post_id", id, "user_id", identity.ID)
		return ErrForbidden
	}

	if err := s.writer.Delete(ctx, id); err != nil {
		logger.Log.Errorw("failed to delete post", "post_id", id, "error", err)
		return err
	}

	s.events.publish(ctx, models.EventPostDeleted, identity.ID, id)
	return nil
}

func (s *PostService) find(ctx context.Context, id int64) (*models.PostDB, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", id, "error", err)
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) withComments(ctx context.Context, post *models.PostDB) (*models.PostResponse, error) {
	comments, err := s.comments.ListByPostIDs(ctx, []int64{post.ID})
	if err != nil {
		logger.Log.Errorw("failed to list comments", "post_id", post.ID, "error", err)
		return nil, err
	}
	resp := post.ToResponse(comments)
	return &resp, nil
}
