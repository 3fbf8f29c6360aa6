// internal/services/errors.go
package services

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("operation not allowed in current state")
)
