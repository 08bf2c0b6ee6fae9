package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Error is the single error type handlers surface. Status maps the taxonomy:
// 404 not found, 400 validation/duplicate/bad query, 401 unauthenticated,
// 403 forbidden, 500 everything else.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

func NewError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return NewError(http.StatusNotFound, format, args...)
}

func BadRequest(format string, args ...any) *Error {
	return NewError(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return NewError(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return NewError(http.StatusForbidden, format, args...)
}

func ServerError(format string, args ...any) *Error {
	return NewError(http.StatusInternalServerError, format, args...)
}

// WriteError is the one place taxonomy becomes status + message. Anything
// that is not an *Error (raw gorm/sql/etc.) is reported as a generic 500 so
// storage internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		JSON(w, appErr.Status, Envelope{Success: false, Msg: appErr.Msg})
		return
	}
	JSON(w, http.StatusInternalServerError, Envelope{Success: false, Msg: "Server Error"})
}

// FromDB translates storage-layer errors into the taxonomy. resource names
// the entity for the 404 message.
func FromDB(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s with this id not found", resource)
	}
	if isDuplicate(err) {
		return BadRequest("Duplicate resource not allowed")
	}
	return err
}

// isDuplicate matches unique-constraint violations for both sqlite and postgres.
func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
