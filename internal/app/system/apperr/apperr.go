// Package apperr defines the error taxonomy shared by stores, services and
// HTTP handlers.
package apperr

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound: the referenced record does not exist (in this church).
	ErrNotFound = errors.New("not found")
	// ErrInvalidState: the record exists but is not in a state the operation accepts.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation: the caller's input was rejected.
	ErrValidation = errors.New("validation failed")
	// ErrConflict: a uniqueness rule or concurrent run blocked the operation.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized: no usable credentials were presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: credentials were valid but lack the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrRateLimited: the caller sent too many requests in the current window.
	ErrRateLimited = errors.New("too many requests")
)

// Validation wraps ErrValidation with a human-readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// FromMongo maps mongo.ErrNoDocuments to ErrNotFound and passes other errors through.
func FromMongo(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
