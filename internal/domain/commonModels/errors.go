package commonModels

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across the pipelines. Handlers classify with
// errors.Is / errors.As and map to HTTP status codes; anything that does not
// match stays a generic internal failure at the boundary.
var (
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrNoExtractableText    = errors.New("no extractable text in document")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrLLMUnavailable       = errors.New("language model service unavailable")
	ErrIndexUnavailable     = errors.New("vector index unavailable")
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
)

// UnsupportedFormatError carries the offending extension.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q", e.Extension)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}
