package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindDuplicate
	KindAuthorization
	KindUnauthenticated
)

// AppError is the domain error returned by services. Kind decides the HTTP
// status and error_code at the boundary.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrValidation      = &AppError{Kind: KindValidation}
	ErrNotFound        = &AppError{Kind: KindNotFound}
	ErrDuplicate       = &AppError{Kind: KindDuplicate}
	ErrAuthorization   = &AppError{Kind: KindAuthorization}
	ErrUnauthenticated = &AppError{Kind: KindUnauthenticated}
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on kind, so errors.Is(err, helper.ErrDuplicate) works for any
// duplicate regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindDuplicate:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func (e *AppError) Code() string {
	switch e.Kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDuplicate:
		return "ALREADY_DONE"
	case KindAuthorization:
		return "FORBIDDEN"
	case KindUnauthenticated:
		return "UNAUTHORIZED"
	}
	return "INTERNAL_ERROR"
}

func NewValidationError(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewDuplicateError(msg string, cause error) error {
	return &AppError{Kind: KindDuplicate, Message: msg, Err: cause}
}

func NewAuthorizationError(msg string) error {
	return &AppError{Kind: KindAuthorization, Message: msg}
}

func NewUnauthenticatedError(msg string) error {
	return &AppError{Kind: KindUnauthenticated, Message: msg}
}

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
