package setup

import "errors"

var (
	ErrNoProfileName    = errors.New("project profile name not resolved")
	ErrBadRepoParameter = errors.New("build repository parameter must be owner/name")
)
