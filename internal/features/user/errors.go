package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrNameRequired    = errors.New("name is required")
	ErrNameLength      = errors.New("name must be at most 100 characters")
	ErrInvalidRole     = errors.New("invalid role")
)
