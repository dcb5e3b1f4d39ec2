package gitops

import "errors"

var (
	ErrCloneFailed = errors.New("clone failed")
	ErrPushFailed  = errors.New("push failed")
)
