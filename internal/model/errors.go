package model

import "errors"

var (
	// Session related errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")

	// Storage related errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageCorrupt     = errors.New("storage corrupt")

	// Resource related errors
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrAvatarNotFound   = errors.New("avatar not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
