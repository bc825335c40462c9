package models

import "time"

// TokenResponse represents an issued bearer token
// swagger:model TokenResponse
type TokenResponse struct {
	// Opaque bearer token
	// example: 3f7c0e5d9a...
	Token string `json:"token"`

	// Moment the token stops being accepted
	TokenExpiration time.Time `json:"tokenExpiration"`
}
