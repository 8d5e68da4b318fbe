package user

import "errors"

var (
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrProtectedUser        = errors.New("the main administrator cannot be deleted")
	ErrProtectedEmail       = errors.New("the main administrator's email cannot be changed")
	ErrAuthenticationFailed = errors.New("invalid email or password")
)
