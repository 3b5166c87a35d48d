package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProduct is returned for names missing from the catalog.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrModelUnavailable is returned when a catalog product has no loaded model artifacts.
	ErrModelUnavailable = errors.New("model artifacts unavailable")
	// ErrEmptyHistory means no sales exist at or before the audit cutoff.
	ErrEmptyHistory = errors.New("no sales history before cutoff")
	// ErrInvalidSteps rejects a horizon below 1 or above the configured maximum.
	ErrInvalidSteps = errors.New("invalid forecast steps")
	// ErrMissingCalendarData is fatal at startup.
	ErrMissingCalendarData = errors.New("holiday calendar data missing")
)

// InsufficientHistoryError reports fewer weekly buckets than the model window needs.
type InsufficientHistoryError struct {
	Found  int
	Needed int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: found %d weeks, need %d", e.Found, e.Needed)
}

// PredictorError wraps a failed model call. Step is zero-based.
type PredictorError struct {
	Step int
	Err  error
}

func (e *PredictorError) Error() string {
	return fmt.Sprintf("predictor failed at step %d: %v", e.Step, e.Err)
}

func (e *PredictorError) Unwrap() error { return e.Err }
