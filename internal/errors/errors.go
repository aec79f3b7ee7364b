// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnknownCommand      = errors.New("command not recognized")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamFormat      = errors.New("unexpected upstream response format")
	ErrNoData              = errors.New("no data returned")
	ErrTickerNotLoaded     = errors.New("no ticker loaded")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrExportFormat        = errors.New("unsupported export format")
)

// DuplicateCommandError reports an attempt to bind a command name twice.
// It is a programmer error raised at menu construction, never at runtime.
type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q already registered", e.Name)
}

// NewDuplicateCommandError creates a new DuplicateCommandError.
func NewDuplicateCommandError(name string) *DuplicateCommandError {
	return &DuplicateCommandError{Name: name}
}

// ArgumentError reports a malformed or invalid flag value. It names the
// offending flag and the token that failed so the diagnostic is actionable.
type ArgumentError struct {
	Flag   string
	Token  string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	switch {
	case e.Flag != "" && e.Token != "":
		return fmt.Sprintf("argument error: --%s %q: %s", e.Flag, e.Token, e.Reason)
	case e.Flag != "":
		return fmt.Sprintf("argument error: --%s: %s", e.Flag, e.Reason)
	case e.Token != "":
		return fmt.Sprintf("argument error: %q: %s", e.Token, e.Reason)
	default:
		return fmt.Sprintf("argument error: %s", e.Reason)
	}
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(flag, token, reason string, err error) *ArgumentError {
	return &ArgumentError{Flag: flag, Token: token, Reason: reason, Err: err}
}

// ProviderError represents a failure talking to an upstream data provider.
type ProviderError struct {
	Provider string
	Endpoint string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("provider %s [%s]: %v", e.Provider, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, endpoint string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Endpoint: endpoint, Err: err}
}

// Unavailable wraps err as an upstream-unavailable provider failure.
func Unavailable(provider, endpoint string, err error) error {
	return NewProviderError(provider, endpoint, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err))
}

// BadFormat wraps err as an upstream-format provider failure.
func BadFormat(provider, endpoint string, err error) error {
	return NewProviderError(provider, endpoint, fmt.Errorf("%w: %v", ErrUpstreamFormat, err))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
