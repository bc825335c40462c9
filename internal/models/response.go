package models

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// example: Post with an ID of 5 does not exist
	Error string `json:"error"`
}

// SuccessResponse is the body of a successful delete
// swagger:model SuccessResponse
type SuccessResponse struct {
	// example: Post 5 has been deleted
	Success string `json:"success"`
}
