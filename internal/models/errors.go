package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Access token lifecycle errors
	ErrInvalidToken             = errors.New("invalid access token")
	ErrTokenAlreadyUsed         = errors.New("access token has already been used")
	ErrTokenGenerationExhausted = errors.New("token generation exhausted")
	ErrEmailSendFailed          = errors.New("email sending failed")
)
