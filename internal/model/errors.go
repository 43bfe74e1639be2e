package model

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrPostNotFound also covers a post owned by someone else.
	ErrPostNotFound = errors.New("post not found")
)
