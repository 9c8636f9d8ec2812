// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error kinds surfaced to API clients and maps
// them to HTTP statuses, stable codes and user-facing messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound reports a missing resource, or one owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured reports that AI features cannot run for the caller.
	ErrNotConfigured = errors.New("AI features are not configured")
)

// Messages shown when AI features cannot run for the caller.
const (
	MsgAIDisabled  = "AI features are not enabled. Please enable them in Settings."
	MsgNoAPIKey    = "OpenAI API key not configured. Please add your API key in Settings."
	MsgUnavailable = "AI features unavailable"
)

// ValidationError is a rejected input. Its message is shown verbatim.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// NotConfiguredError carries the reason AI features are unavailable for
// the caller. It matches ErrNotConfigured with errors.Is.
type NotConfiguredError struct {
	Reason string
}

func (e *NotConfiguredError) Error() string        { return e.Reason }
func (e *NotConfiguredError) Is(target error) bool { return target == ErrNotConfigured }

// UpstreamError wraps a failed call to the text-generation provider.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", MsgUnavailable, e.Provider, e.Err)
}
func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed read or write of stored state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError. A nil err stays nil and an
// error that is already classified passes through.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Classified reports whether err already carries one of this package's
// kinds.
func Classified(err error) bool {
	var (
		ve *ValidationError
		ue *UpstreamError
		pe *PersistenceError
	)
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotConfigured) ||
		errors.As(err, &ve) || errors.As(err, &ue) || errors.As(err, &pe)
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var (
		ve *ValidationError
		ue *UpstreamError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.As(err, &pe):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code maps err to a stable machine-readable code.
func Code(err error) string {
	var (
		ve *ValidationError
		ue *UpstreamError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrNotConfigured):
		return "AI_NOT_CONFIGURED"
	case errors.As(err, &ue):
		return "AI_UNAVAILABLE"
	case errors.As(err, &pe):
		return "PERSISTENCE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Message returns the text shown to the user for err. Internal details of
// upstream and storage failures are never included.
func Message(err error) string {
	var (
		ve *ValidationError
		nc *NotConfiguredError
		ue *UpstreamError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.As(err, &nc):
		return nc.Reason
	case errors.Is(err, ErrNotConfigured):
		return MsgAIDisabled
	case errors.As(err, &ue):
		return MsgUnavailable + ". Please try again later."
	case errors.As(err, &pe):
		return "Your changes could not be saved. Please try again."
	default:
		return "Internal server error"
	}
}
