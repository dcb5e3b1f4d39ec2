package workflow

import "errors"

var (
	ErrProjectNotReady  = errors.New("project did not become ready")
	ErrSpaceNotReady    = errors.New("space did not become available")
	ErrProjectFailed    = errors.New("project creation failed")
	ErrMissingSteps     = errors.New("machine requires all steps")
	ErrDeadlineExceeded = errors.New("workflow deadline exceeded")
)
