package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a business failure so the HTTP layer can map it to a status
// code without inspecting messages.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindAlreadyExists     Kind = "ALREADY_EXISTS"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindGateway           Kind = "GATEWAY_ERROR"
)

// Error is the single error type crossing the workflow boundary. Callers
// match on Kind via errors.As or the Is* helpers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Gateway(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

func IsNotFound(err error) bool          { return kindIs(err, KindNotFound) }
func IsAlreadyExists(err error) bool     { return kindIs(err, KindAlreadyExists) }
func IsInvalidTransition(err error) bool { return kindIs(err, KindInvalidTransition) }
func IsValidation(err error) bool        { return kindIs(err, KindValidation) }
func IsGateway(err error) bool           { return kindIs(err, KindGateway) }

func kindIs(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// HTTPStatus maps an error kind to the status the admin API returns.
// Transition and duplicate failures are conflicts, validation failures are
// unprocessable input, gateway outcomes surface as bad gateway.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAlreadyExists, KindInvalidTransition:
		return fiber.StatusConflict
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindGateway:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
