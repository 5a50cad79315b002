package model

import "fmt"

// ErrorCode classifies domain errors so the transport layer can map them to
// statuses without string matching.
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeInvalidInput       ErrorCode = "INVALID_INPUT"
	CodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	CodeTerminalState      ErrorCode = "TERMINAL_STATE"
)

// DomainError is a synchronous, non-retryable business error carrying enough
// detail to render a user-facing message. It is never a partial-write signal:
// an operation that returns one has applied nothing.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFoundf builds a CodeNotFound error.
func NotFoundf(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a CodeConflict error.
func Conflictf(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalidf builds a CodeInvalidInput error.
func Invalidf(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a CodePreconditionFailed error.
func Preconditionf(format string, args ...any) *DomainError {
	return &DomainError{Code: CodePreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

// Terminalf builds a CodeTerminalState error. Used for any non-resurrection
// action attempted against a dead pet.
func Terminalf(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeTerminalState, Message: fmt.Sprintf(format, args...)}
}
