package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the stores, the services and the CLI
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTransient       = errors.New("store temporarily unavailable")
	ErrConfiguration   = errors.New("configuration error")
	ErrUnauthenticated = errors.New("no signed-in user")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation error")
)

// ConflictError is returned when a decision targets a record that already reached a different terminal state,
// or when a concurrent writer changed the record between read and write
type ConflictError struct {
	JoinEventID string
	Current     Status
	Requested   Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("join event %s is already %s, cannot mark as %s", e.JoinEventID, e.Current, e.Requested)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ConfigurationError collects every problem found while validating a policy or configuration table
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("configuration: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DataQualityWarning describes a single malformed record that was skipped or zeroed during aggregation.
// It is never returned as an error.
type DataQualityWarning struct {
	JoinEventID string
	Field       string
	Value       string
	Reason      string
}

func (w DataQualityWarning) String() string {
	return fmt.Sprintf("join event %s: %s %q %s", w.JoinEventID, w.Field, w.Value, w.Reason)
}
