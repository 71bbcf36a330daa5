package pipeline

import (
	"fmt"
	"net/http"
)

// Kind classifies request failures.
type Kind string

const (
	KindUnauthorized        Kind = "Unauthorized"
	KindBadRequest          Kind = "BadRequest"
	KindPayloadTooLarge     Kind = "PayloadTooLarge"
	KindInsufficientContent Kind = "InsufficientContent"
	KindUnsupportedFormat   Kind = "UnsupportedFormat"
	KindExtractionFailure   Kind = "ExtractionFailure"
	KindInferenceFailure    Kind = "InferenceFailure"
	KindProcessingFailed    Kind = "ProcessingFailed"
	KindQueryFailure        Kind = "QueryFailure"
)

// StatusCode returns the HTTP status code used to report the kind of failure.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest, KindInsufficientContent, KindUnsupportedFormat:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

type Error struct {
	Kind Kind
	// Message is safe to return to the caller.
	Message string
	Err     error
	// ExtractedLength is set for InsufficientContent failures.
	ExtractedLength int
	// DocumentID is set if a document record was created before the failure.
	DocumentID string
	// Recorded is true if the failure was written to the document record.
	Recorded bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the text of the underlying error, or the message if there isn't one.
func (e *Error) Cause() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}
