package services

import "errors"

// Error variables
var (
	ErrUserAlreadyExists   = errors.New("user with that username and/or email already exists")
	ErrUserDoesNotExist    = errors.New("user does not exist")
	ErrPostNotFound        = errors.New("post does not exist")
	ErrCommentNotFound     = errors.New("comment does not exist")
	ErrForbidden           = errors.New("you do not have permission to modify this resource")
	ErrCommentPostMismatch = errors.New("comment does not belong to this post")
)
