package models

import (
	"errors"
	"fmt"
	"time"
)

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrRatingNotFinite     = errors.New("rating is not finite")
	ErrOutOfOrderUpdate    = errors.New("rating update out of chronological order")
	ErrUnvalidatedConfig   = errors.New("calibration config has not passed validation")
	ErrTruncatedResultSet  = errors.New("paged fetch returned a truncated result set")
	ErrGameNotCompleted    = errors.New("game has no final result")
	ErrIncompatibleKPolicy = errors.New("blowout cap and margin multiplier are mutually exclusive")
)

// LeakageError marks a future-dated input used for a past prediction.
// It is fatal: a run that observes one must abort, never continue with
// the offending game skipped.
type LeakageError struct {
	EventID   string
	InputKind string
	InputTime time.Time
	Kickoff   time.Time
}

func (e *LeakageError) Error() string {
	return fmt.Sprintf("leakage violation: %s input for event %s timestamped %s at or after kickoff %s",
		e.InputKind, e.EventID, e.InputTime.Format(time.RFC3339), e.Kickoff.Format(time.RFC3339))
}

// IsLeakage reports whether err is (or wraps) a LeakageError
func IsLeakage(err error) bool {
	var le *LeakageError
	return errors.As(err, &le)
}
