package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes. Every AppError belongs to exactly one class and matches it with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedUpstream   = errors.New("malformed upstream response")
)

const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeExtractionUnavailable    = "EXTRACTION_UNAVAILABLE"
	CodeExtractionMalformed      = "EXTRACTION_MALFORMED"
	CodeBlobStoreUnavailable     = "BLOB_STORE_UNAVAILABLE"
	CodeDocumentStoreUnavailable = "DOCUMENT_STORE_UNAVAILABLE"
	CodeDocumentConflict         = "DOCUMENT_CONFLICT"
	CodeNotFound                 = "NOT_FOUND"
	CodeCandidateNotFound        = "CANDIDATE_NOT_FOUND"
	CodeQAUnavailable            = "QA_UNAVAILABLE"
	CodeQAMalformed              = "QA_MALFORMED"
	CodeConfig                   = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Class   error
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

func (e *AppError) Is(target error) bool {
	return e.Class != nil && target == e.Class
}

func New(code, message string, class, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Class:   class,
		Cause:   cause,
	}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, ErrValidation, nil)
}

func Validationf(format string, args ...interface{}) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func ExtractionUnavailable(cause error) *AppError {
	return New(CodeExtractionUnavailable, "extraction model unavailable", ErrUpstreamUnavailable, cause)
}

func ExtractionMalformed(cause error) *AppError {
	return New(CodeExtractionMalformed, "extraction model returned an unparseable response", ErrMalformedUpstream, cause)
}

func BlobStoreUnavailable(cause error) *AppError {
	return New(CodeBlobStoreUnavailable, "blob store unavailable", ErrUpstreamUnavailable, cause)
}

func DocumentStoreUnavailable(cause error) *AppError {
	return New(CodeDocumentStoreUnavailable, "document store unavailable", ErrUpstreamUnavailable, cause)
}

func DocumentConflict(id string, cause error) *AppError {
	return New(CodeDocumentConflict, fmt.Sprintf("candidate %s already exists", id), ErrConflict, cause)
}

func NotFound(id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("candidate %s not found", id), ErrNotFound, nil)
}

func CandidateNotFound(id string, cause error) *AppError {
	return New(CodeCandidateNotFound, fmt.Sprintf("candidate %s not found", id), ErrNotFound, cause)
}

func QAUnavailable(cause error) *AppError {
	return New(CodeQAUnavailable, "Q&A model unavailable", ErrUpstreamUnavailable, cause)
}

func QAMalformed(cause error) *AppError {
	return New(CodeQAMalformed, "Q&A model returned an unusable response", ErrMalformedUpstream, cause)
}

// CodeOf returns the AppError code in the chain, or "" when err carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the client-facing message for err without leaking transport detail.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrMalformedUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
