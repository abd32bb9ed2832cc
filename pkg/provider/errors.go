package provider

import (
	"context"
	"errors"
	"fmt"
)

// ConfigurationError reports missing or invalid credentials or deployment
// settings for a selected backend. It is fatal, surfaced before any network
// call and never retried.
type ConfigurationError struct {
	Provider string

	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ProviderError wraps a failed backend call, classified as retryable or
// fatal by the provider layer.
type ProviderError struct {
	Provider string

	Status    int
	Retryable bool

	Err error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a provider error worth retrying.
// Configuration and validation failures are never retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError

	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// NewError classifies a backend failure by HTTP status. Rate limits,
// request timeouts and server-side errors are retryable; authentication and
// request errors are not.
func NewError(provider string, status int, err error) *ProviderError {
	retryable := false

	switch {
	case status == 408 || status == 429:
		retryable = true

	case status >= 500:
		retryable = true

	case status == 0:
		// No HTTP status: transport-level failure or deadline. Cancellation
		// by the caller is not retried.
		retryable = !errors.Is(err, context.Canceled)
	}

	return &ProviderError{
		Provider: provider,

		Status:    status,
		Retryable: retryable,

		Err: err,
	}
}
