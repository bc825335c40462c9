package models

import "time"

// PostDB represents a post row, optionally joined with its author.
type PostDB struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Body        string    `db:"body"`
	DateCreated time.Time `db:"date_created"`
	UserID      int64     `db:"user_id"`
	Author      AuthorDB  `db:"author"`
}

// OwnerID returns the id of the user who wrote the post.
func (p *PostDB) OwnerID() int64 {
	return p.UserID
}

// ApplyUpdate copies the allow-listed fields of upd onto the post.
// It reports whether anything changed.
func (p *PostDB) ApplyUpdate(upd PostUpdateRequest) bool {
	changed := false
	if upd.Title != nil && *upd.Title != p.Title {
		p.Title = *upd.Title
		changed = true
	}
	if upd.Body != nil && *upd.Body != p.Body {
		p.Body = *upd.Body
		changed = true
	}
	return changed
}

// ToResponse builds the public post representation with the given comments.
func (p *PostDB) ToResponse(comments []*CommentDB) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		DateCreated: p.DateCreated,
		Author:      p.Author.toResponse(),
		Comments:    make([]CommentResponse, 0, len(comments)),
	}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, c.ToResponse())
	}
	return resp
}

// PostCreateRequest represents the JSON body for creating a post
// swagger:model PostCreateRequest
type PostCreateRequest struct {
	// required: true
	// example: Hello
	Title *string `json:"title" validate:"required"`

	// required: true
	// example: My first post
	Body *string `json:"body" validate:"required"`
}

// PostUpdateRequest lists the only post fields a client may change.
// Any other key in the request body is ignored.
// swagger:model PostUpdateRequest
type PostUpdateRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// PostResponse represents a post with its author and comments
// swagger:model PostResponse
type PostResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	DateCreated time.Time         `json:"dateCreated"`
	Author      AuthorResponse    `json:"author"`
	Comments    []CommentResponse `json:"comments"`
}
