package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so cloned errors still
// match their predefined class with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrTooManyRequests    = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests, "rate limit exceeded")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache entry not found")
)

// Authorization failures. All of them are terminal for the request.
var (
	ErrMissingKey          = New("MISSING_KEY", http.StatusUnauthorized, "api key is required")
	ErrWrongKeyClass       = New("WRONG_KEY_CLASS", http.StatusForbidden, "api key is not permitted for this resource")
	ErrKeyUnavailable      = New("KEY_UNAVAILABLE", http.StatusForbidden, "api key has been revoked")
	ErrMissingToken        = New("MISSING_TOKEN", http.StatusUnauthorized, "access token is required")
	ErrInvalidToken        = New("UNAUTHORIZED", http.StatusUnauthorized, "invalid or expired token")
	ErrInvalidTokenPayload = New("INVALID_TOKEN_PAYLOAD", http.StatusUnauthorized, "token payload is missing a subject")
	ErrRoleMismatch        = New("ROLE_MISMATCH", http.StatusForbidden, "user role is not permitted for this resource")
	ErrUserUnavailable     = New("USER_UNAVAILABLE", http.StatusForbidden, "user is no longer available")
	ErrAccessSuspended     = New("ACCESS_SUSPENDED", http.StatusForbidden, "user access is suspended")
	ErrAccessRevoked       = New("ACCESS_REVOKED", http.StatusForbidden, "user access is revoked")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithFields returns a copy of err carrying field-level details.
func WithFields(err *Error, fields []FieldError) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Fields = append([]FieldError(nil), fields...)
	return &clone
}

// IsAuth reports whether err belongs to the authorization taxonomy.
func IsAuth(err error) bool {
	e := FromError(err)
	if e == nil {
		return false
	}
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}
