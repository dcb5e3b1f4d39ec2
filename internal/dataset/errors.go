package dataset

import "errors"

// Sentinel errors for table and codec operations.
var (
	ErrEmptyTable      = errors.New("table has no rows")
	ErrMissingColumn   = errors.New("column not found")
	ErrDuplicateColumn = errors.New("column already exists")
	ErrRaggedRow       = errors.New("row length mismatch")
	ErrNotNumeric      = errors.New("value is not numeric")
)
