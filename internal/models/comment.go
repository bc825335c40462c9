package models

import "time"

// CommentDB represents a comment row, optionally joined with its author.
type CommentDB struct {
	ID          int64     `db:"id"`
	Body        string    `db:"body"`
	DateCreated time.Time `db:"date_created"`
	UserID      int64     `db:"user_id"`
	PostID      int64     `db:"post_id"`
	User        AuthorDB  `db:"user"`
}

// OwnerID returns the id of the user who wrote the comment.
func (c *CommentDB) OwnerID() int64 {
	return c.UserID
}

// ToResponse builds the public comment representation.
func (c *CommentDB) ToResponse() CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		Body:        c.Body,
		DateCreated: c.DateCreated,
		PostID:      c.PostID,
		User:        c.User.toResponse(),
	}
}

// CommentCreateRequest represents the JSON body for commenting on a post
// swagger:model CommentCreateRequest
type CommentCreateRequest struct {
	// required: true
	// example: Nice post!
	Body *string `json:"body" validate:"required"`
}

// CommentResponse represents a comment with its author
// swagger:model CommentResponse
type CommentResponse struct {
	ID          int64          `json:"id"`
	Body        string         `json:"body"`
	DateCreated time.Time      `json:"dateCreated"`
	PostID      int64          `json:"post_id"`
	User        AuthorResponse `json:"user"`
}
