package pipeline

import "errors"

var (
	ErrUnknownModule    = errors.New("unknown pipeline module")
	ErrMissingRole      = errors.New("execution role ARN is required")
	ErrIncompleteConfig = errors.New("incomplete pipeline configuration")
	ErrUpsertFailed     = errors.New("pipeline upsert failed")
	ErrStartFailed      = errors.New("pipeline start failed")
)
