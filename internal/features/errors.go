package features

import "errors"

// Sentinel errors for feature engineering operations.
var (
	ErrMissingTarget = errors.New("target column not found")
	ErrBadRatios     = errors.New("split ratios must be positive and sum below 1")
)
