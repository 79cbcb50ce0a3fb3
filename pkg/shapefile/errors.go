package shapefile

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/shapefile/internal/fetch"
)

var (
	// ErrInvalidInput indicates no usable bytes were supplied.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoLayersFound indicates an archive or file set with no .shp, .json or
	// whitelisted member.
	ErrNoLayersFound = errors.New("no layers found")

	// ErrFetch wraps every retrieval failure. Use errors.As with *FetchError
	// for the location and HTTP status.
	ErrFetch = errors.New("fetch failed")
)

// FetchError reports a failed retrieval of a remote or local component.
type FetchError = fetch.Error

// InputError describes input that Normalize could not turn into bytes.
type InputError struct {
	Type   string // Go type of the rejected input
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input (%s): %s", e.Type, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) true.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// LayerError wraps a decoder failure with the layer it occurred in.
type LayerError struct {
	Layer     string
	Component string // "shp", "dbf" or "json"
	Err       error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s: decode %s: %v", e.Layer, e.Component, e.Err)
}

func (e *LayerError) Unwrap() error {
	return e.Err
}

func fetchFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrFetch, err)
}
