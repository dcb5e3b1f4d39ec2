// Package workflow runs the project setup state machine: poll a newly
// created project until it settles, seed its build repository, then create
// its deployment repository. State between steps travels in an immutable
// Context; steps never mutate shared state, they return a derived copy.
package workflow

// Status is the coarse outcome a step reports into the workflow context.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusSuccessful      Status = "SUCCESSFUL"
	StatusFailed          Status = "FAILED"
	StatusWaitingForSpace Status = "WAITING_FOR_SPACE"
)

// SageMakerSetup carries the SageMaker resources resolved for a project.
type SageMakerSetup struct {
	DomainARN         string `json:"domain_arn,omitempty"`
	SpaceARN          string `json:"space_arn,omitempty"`
	UserProfileARN    string `json:"user_profile_arn,omitempty"`
	ExecutionRole     string `json:"execution_role,omitempty"`
	ModelPackageGroup string `json:"model_package_group,omitempty"`
	ArtifactBucket    string `json:"artifact_bucket,omitempty"`
}

// Setup carries the project metadata resolved during the workflow.
type Setup struct {
	ProfileName      string         `json:"profile_name,omitempty"`
	ProjectName      string         `json:"project_name,omitempty"`
	DomainUnitID     string         `json:"domain_unit_id,omitempty"`
	DeployAccount    string         `json:"deploy_account,omitempty"`
	ProjectProfileID string         `json:"project_profile_id,omitempty"`
	SageMaker        SageMakerSetup `json:"sagemaker,omitempty"`
}

// Context is the state threaded through the workflow. It is a value type:
// every With method returns a derived copy with an incremented version, and
// the original is never modified. The version makes step progression
// observable in logs and tests.
type Context struct {
	version int

	ProjectID      string            `json:"project_id"`
	DomainID       string            `json:"domain_id"`
	Status         Status            `json:"status"`
	BuildRepo      string            `json:"build_repo,omitempty"`
	UserParameters map[string]string `json:"user_parameters,omitempty"`
	Setup          Setup             `json:"setup,omitempty"`
	Err            string            `json:"error,omitempty"`
}

// NewContext seeds a workflow context for a project. The initial status is
// pending until the first status check reports otherwise.
func NewContext(projectID, domainID string) Context {
	return Context{
		ProjectID: projectID,
		DomainID:  domainID,
		Status:    StatusPending,
	}
}

// Version reports how many derivations produced this context. A fresh
// context is version zero.
func (c Context) Version() int {
	return c.version
}

// WithStatus derives a context with the given status.
func (c Context) WithStatus(status Status) Context {
	c.Status = status
	c.version++
	return c
}

// WithSetup derives a context carrying resolved project metadata.
func (c Context) WithSetup(setup Setup) Context {
	c.Setup = setup
	c.version++
	return c
}

// WithBuildRepo derives a context recording the build repository name.
func (c Context) WithBuildRepo(repo string) Context {
	c.BuildRepo = repo
	c.version++
	return c
}

// WithUserParameters derives a context carrying the project's creation
// parameters. The map is copied so later mutation of the argument cannot
// leak in.
func (c Context) WithUserParameters(params map[string]string) Context {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	c.UserParameters = copied
	c.version++
	return c
}

// WithError derives a failed context recording the error message.
func (c Context) WithError(err error) Context {
	c.Status = StatusFailed
	if err != nil {
		c.Err = err.Error()
	}
	c.version++
	return c
}

// Failed reports whether the workflow has reached a terminal failure.
func (c Context) Failed() bool {
	return c.Status == StatusFailed
}
