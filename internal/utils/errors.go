package utils

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrStoreFailure   = errors.New("storage backend failure")
	ErrUnknownAction  = errors.New("unknown job action")
	ErrInvalidRequest = errors.New("invalid request")
)
