package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy of the generation pipeline.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrUpstream          = errors.New("upstream error")
	ErrNotExportable     = errors.New("job not exportable")
	ErrNotFound          = errors.New("resource not found")
	ErrInternal          = errors.New("internal error")
)

// Stable codes carried by AppError and by a failed job's error message.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeNotExportable     = "NOT_EXPORTABLE"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL"
	CodeConfig            = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InvalidRequest(format string, args ...any) error {
	return NewAppError(CodeInvalidRequest, fmt.Sprintf(format, args...), ErrInvalidRequest)
}

func SourceUnavailable(format string, args ...any) error {
	return NewAppError(CodeSourceUnavailable, fmt.Sprintf(format, args...), ErrSourceUnavailable)
}

// Upstream tags err as an analysis-service failure. err stays in the chain.
func Upstream(message string, err error) error {
	if err == nil {
		return NewAppError(CodeUpstreamError, message, ErrUpstream)
	}
	return NewAppError(CodeUpstreamError, message, fmt.Errorf("%w: %w", ErrUpstream, err))
}

func NotExportable(format string, args ...any) error {
	return NewAppError(CodeNotExportable, fmt.Sprintf(format, args...), ErrNotExportable)
}

func NotFound(format string, args ...any) error {
	return NewAppError(CodeNotFound, fmt.Sprintf(format, args...), ErrNotFound)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// TagOf returns the taxonomy code of err, or CodeInternal for anything unclassified.
func TagOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrSourceUnavailable):
		return CodeSourceUnavailable
	case errors.Is(err, ErrUpstream):
		return CodeUpstreamError
	case errors.Is(err, ErrNotExportable):
		return CodeNotExportable
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	}
	return CodeInternal
}

// CodeOf maps the taxonomy onto gRPC status codes.
func CodeOf(err error) codes.Code {
	switch TagOf(err) {
	case "":
		return codes.OK
	case CodeInvalidRequest:
		return codes.InvalidArgument
	case CodeSourceUnavailable:
		return codes.FailedPrecondition
	case CodeUpstreamError:
		return codes.Unavailable
	case CodeNotExportable:
		return codes.FailedPrecondition
	case CodeNotFound:
		return codes.NotFound
	}
	return codes.Internal
}
