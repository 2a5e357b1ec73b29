package auth

import "errors"

var (
	// ErrEmailExists indicates a duplicate email address.
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists indicates a duplicate username.
	ErrUsernameExists = errors.New("username already exists")
)
