// apperr/apperr.go - Application error kinds mapped to HTTP statuses
package apperr

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindValidation Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func Validation(msg string) *Error      { return &Error{Kind: KindValidation, Msg: msg} }
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string) *Error        { return &Error{Kind: KindInternal, Msg: msg} }

// StatusCode returns the HTTP status for an error. Unknown errors map to 500.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation:
			return fiber.StatusBadRequest
		case KindUnauthenticated:
			return fiber.StatusUnauthorized
		case KindForbidden:
			return fiber.StatusForbidden
		case KindNotFound:
			return fiber.StatusNotFound
		case KindConflict:
			return fiber.StatusConflict
		}
	}
	return fiber.StatusInternalServerError
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ErrorHandler renders any error returned by a handler as the API's JSON
// error envelope. Wired as the fiber app's ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *Error
	if errors.As(err, &appErr) {
		code = StatusCode(appErr)
		message = appErr.Msg
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == fiber.StatusInternalServerError {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
