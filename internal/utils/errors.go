package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUserInactive       = errors.New("user_inactive")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameExists     = errors.New("username_exists")
	ErrEmailExists        = errors.New("email_exists")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrPasswordMismatch   = errors.New("password_mismatch")
)
