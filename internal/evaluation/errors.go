package evaluation

import "errors"

// Sentinel errors for metric computation and tracking.
var (
	ErrNoSamples      = errors.New("no samples provided")
	ErrLengthMismatch = errors.New("labels and probabilities differ in length")
	ErrInvalidLabel   = errors.New("labels must be 0 or 1")
	ErrEmptyReport    = errors.New("evaluation report has no metrics")
	ErrMissingMetric  = errors.New("metric not present in report")
	ErrNoRunID        = errors.New("tracking server returned no run id")
	ErrTrackingFailed = errors.New("tracking request failed")
)
