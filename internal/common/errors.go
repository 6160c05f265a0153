package common

import (
	"errors"
	"fmt"
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

// Pipeline error taxonomy. The first two abort a document's run and surface
// to the caller; the rest degrade into partial report content.
var (
	// ErrUnsupportedFormat: the normalizer cannot interpret the input kind.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrEmptyExtraction: extracted text is below the minimum length,
	// typically a scanned/image-only source.
	ErrEmptyExtraction = errors.New("no extractable text")

	// ErrInsufficientContent: every retrieval strategy produced too little
	// context. Non-fatal; extraction proceeds on a best-effort context.
	ErrInsufficientContent = errors.New("insufficient retrieval content")

	// ErrParseFailure: the model reply could not be parsed for a schema.
	// Non-fatal; the schema's section is marked failed, others continue.
	ErrParseFailure = errors.New("model reply not parseable")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// RemediationHint returns a human-readable hint for fatal pipeline errors,
// surfaced to callers next to the structured error.
func RemediationHint(err error) string {
	switch {
	case errors.Is(err, ErrEmptyExtraction):
		return "file may be scanned/image-based; upload a text-based export instead"
	case errors.Is(err, ErrUnsupportedFormat):
		return "supported inputs are PDF, EDI interchange text, plain text, and web pages"
	default:
		return ""
	}
}
