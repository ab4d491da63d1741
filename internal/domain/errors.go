package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection signals an unreachable store or model, or a malformed connection URL.
	ErrConnection = errors.New("connection error")
	// ErrValidation signals a payload rejected before it reaches a backend.
	ErrValidation = errors.New("validation error")
	// ErrStore signals a generic backend failure.
	ErrStore = errors.New("store error")
	// ErrNotFound signals a missing collection context.
	ErrNotFound = errors.New("not found")
	// ErrTranslation signals that the model produced no usable query.
	ErrTranslation = errors.New("translation failed")
	// ErrParse signals query text that is not valid structured data.
	ErrParse = errors.New("query is not valid structured data")
	// ErrModelUnavailable signals a failed call to the language model.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrEmbeddingProvider signals a failed call to the embedding endpoint.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)

// NotFoundError names the collection whose context was never registered.
type NotFoundError struct {
	Collection string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no context registered for collection %q: %s", e.Collection, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not-found error for the given collection.
func NewNotFound(collection string) error {
	return &NotFoundError{Collection: collection}
}
