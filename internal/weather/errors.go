package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches fetch failures where no response was received.
	ErrNetwork = errors.New("network failure")
	// ErrStatus matches fetch failures caused by a non-success status code.
	ErrStatus = errors.New("non-success status")
	// ErrDecode matches fetch failures where the payload could not be decoded.
	ErrDecode = errors.New("decode failure")

	// ErrNoProviders is returned by Service.Refresh when nothing can be fetched.
	ErrNoProviders = errors.New("no weather providers configured")
)

// FetchErrorKind classifies a FetchError.
type FetchErrorKind string

const (
	FetchNetwork FetchErrorKind = "network"
	FetchStatus  FetchErrorKind = "status"
	FetchDecode  FetchErrorKind = "decode"
)

// FetchError is returned by providers for every failed fetch.
type FetchError struct {
	Provider   string
	Kind       FetchErrorKind
	StatusCode int // set for FetchStatus
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("%s: %s %d: %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FetchNetwork
	case ErrStatus:
		return e.Kind == FetchStatus
	case ErrDecode:
		return e.Kind == FetchDecode
	}
	return false
}
