package user

import "errors"

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when the login or the email is taken.
	ErrAlreadyExists = errors.New("user already exists")
)
