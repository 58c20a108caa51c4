package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for a 404 from the catalog or an empty name search.
	ErrNotFound = errors.New("character not found")
	// ErrNetwork is matched by every transport failure.
	ErrNetwork = errors.New("network error - please check your internet connection")
)

// NetworkError wraps a transport failure. It matches ErrNetwork with
// errors.Is and still unwraps to the underlying cause.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork.Error(), e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// UpstreamError is any non-success status other than 404.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}
