package models

import "time"

// UserDB represents a user row in the database.
type UserDB struct {
	ID              int64      `db:"id"`               // Primary key
	FirstName       string     `db:"first_name"`       // Given name
	LastName        string     `db:"last_name"`        // Family name
	Email           string     `db:"email"`            // Unique email
	Username        string     `db:"username"`         // Unique username
	Password        string     `db:"password"`         // bcrypt digest, never plaintext
	DateCreated     time.Time  `db:"date_created"`     // Creation timestamp
	Token           *string    `db:"token"`            // Current bearer token, NULL when never issued
	TokenExpiration *time.Time `db:"token_expiration"` // Set together with Token
}

// TokenValidUntil reports whether the user holds a token that is still valid at t.
func (u *UserDB) TokenValidUntil(t time.Time) bool {
	return u.Token != nil && *u.Token != "" &&
		u.TokenExpiration != nil && u.TokenExpiration.After(t)
}

// ToResponse returns the public representation of the user as its own identity.
func (u *UserDB) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		DateCreated: u.DateCreated,
	}
}

// ToAuthor returns the representation embedded in posts and comments.
func (u *UserDB) ToAuthor() AuthorResponse {
	return AuthorResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
	}
}

// AuthorDB holds the user columns joined into post and comment queries.
type AuthorDB struct {
	ID        int64  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Username  string `db:"username"`
	Email     string `db:"email"`
}

func (a AuthorDB) toResponse() AuthorResponse {
	return AuthorResponse{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Username:  a.Username,
		Email:     a.Email,
	}
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// First name
	// required: true
	// example: Bob
	FirstName *string `json:"firstName" validate:"required"`

	// Last name
	// required: true
	// example: Dylan
	LastName *string `json:"lastName" validate:"required"`

	// Username
	// required: true
	// example: thebobdylan
	Username *string `json:"username" validate:"required"`

	// Email
	// required: true
	// example: bd@rad.com
	Email *string `json:"email" validate:"required"`

	// Password, empty when omitted
	// example: secret123
	Password *string `json:"password"`
}

// UserResponse represents a user as returned to the user itself
// swagger:model UserResponse
type UserResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DateCreated time.Time `json:"dateCreated"`
}

// AuthorResponse represents the owner of a post or comment
// swagger:model AuthorResponse
type AuthorResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
