package githubops

import "errors"

var (
	ErrEmptyToken       = errors.New("github token secret is empty")
	ErrRepoCreateFailed = errors.New("repository creation failed")
	ErrSealFailed       = errors.New("secret sealing failed")
)
