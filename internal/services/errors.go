package services

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/lighttribe-backend/pkg/utils"
)

// Sentinel errors. Handlers map these to HTTP statuses; anything else is an
// internal failure whose detail is only logged.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired access token")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("service unavailable")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// fromUtils converts a pkg/utils validation error, passing other errors through.
func fromUtils(err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return invalid(verr.Field, verr.Message)
	}
	return err
}

// notFound wraps ErrNotFound with the missing entity.
func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// isDuplicateKey reports unique index violations from MongoDB and from the
// embedded engine, which does not produce driver write exceptions.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
