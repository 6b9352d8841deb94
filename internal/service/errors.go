package service

import (
	"errors"
	"log/slog"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidTarget   = errors.New("invalid target")
	ErrAccessDenied    = errors.New("access denied")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAlreadyMember   = errors.New("already member")
	ErrAlreadyOwner    = errors.New("already owner")
	ErrNotOwner        = errors.New("not owner")
	ErrNoOp            = errors.New("no-op")
	ErrLastOwner       = errors.New("last owner")
	ErrDuplicateTarget = errors.New("duplicate target")
	ErrInvalidValue    = errors.New("invalid value")
	ErrInternal        = errors.New("internal")
)

// ServiceError wraps a sentinel error with a specific code and message for the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

// Convenience constructors for common error types.

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func InvalidTarget(code, message string) *ServiceError {
	return NewError(ErrInvalidTarget, code, message)
}

func AccessDenied(code, message string) *ServiceError {
	return NewError(ErrAccessDenied, code, message)
}

func Unauthenticated(code, message string) *ServiceError {
	return NewError(ErrUnauthenticated, code, message)
}

func AlreadyMember(message string) *ServiceError {
	return NewError(ErrAlreadyMember, "ALREADY_MEMBER", message)
}

func AlreadyOwner(message string) *ServiceError {
	return NewError(ErrAlreadyOwner, "ALREADY_OWNER", message)
}

func NotOwner(message string) *ServiceError {
	return NewError(ErrNotOwner, "NOT_OWNER", message)
}

func NoOp(message string) *ServiceError {
	return NewError(ErrNoOp, "NO_OP", message)
}

func LastOwner(message string) *ServiceError {
	return NewError(ErrLastOwner, "LAST_OWNER", message)
}

func DuplicateTarget(message string) *ServiceError {
	return NewError(ErrDuplicateTarget, "DUPLICATE_TARGET", message)
}

func InvalidValue(code, message string) *ServiceError {
	return NewError(ErrInvalidValue, code, message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}

// translate passes service errors through and turns anything else, such
// as a failed snapshot write, into Internal.
func translate(log *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	log.Error("state update failed", "error", err)
	return Internal("INTERNAL", "internal server error")
}
