package projects

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrDomainNotFound  = errors.New("no sagemaker domain tagged for project")
	ErrNoUserProfile   = errors.New("domain has no user profiles")
	ErrInvalidRoleARN  = errors.New("invalid role arn")
)
