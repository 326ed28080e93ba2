package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors.
// Kind, when set, is one of the sentinel errors below so callers can errors.Is on it.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Per-document pipeline failures.
var (
	ErrExtraction     = errors.New("no text extracted")
	ErrStructureParse = errors.New("could not extract specification structure")
	ErrTransport      = errors.New("extraction service call failed")
)

const (
	CodeExtraction     = "EXTRACTION_ERROR"
	CodeStructureParse = "STRUCTURE_PARSE_ERROR"
	CodeTransport      = "TRANSPORT_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewExtractionError(message string, cause error) *AppError {
	return &AppError{Code: CodeExtraction, Message: message, Kind: ErrExtraction, Cause: cause}
}

func NewStructureParseError(message string, cause error) *AppError {
	return &AppError{Code: CodeStructureParse, Message: message, Kind: ErrStructureParse, Cause: cause}
}

func NewTransportError(message string, cause error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Kind: ErrTransport, Cause: cause}
}

// UserMessage is the human-readable reason shown for a failed document.
// Transport failures read the same as structure failures.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExtraction):
		return ErrExtraction.Error()
	case errors.Is(err, ErrStructureParse), errors.Is(err, ErrTransport):
		return ErrStructureParse.Error()
	default:
		return err.Error()
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps pipeline failures onto gRPC status codes.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	msg := UserMessage(err)
	switch {
	case errors.Is(err, ErrExtraction):
		return status.Error(codes.FailedPrecondition, msg)
	case errors.Is(err, ErrStructureParse):
		return status.Error(codes.InvalidArgument, msg)
	case errors.Is(err, ErrTransport):
		return status.Error(codes.Unavailable, msg)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, msg)
	}
}
