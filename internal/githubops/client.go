// Package githubops manages the GitHub side of project setup: creating
// deployment repositories, publishing Actions secrets, and dispatching
// deployment workflows.
package githubops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/google/go-github/v66/github"
)

// API is the subset of the GitHub client the service depends on, split by
// service for fakeability.
type API interface {
	CreateRepo(ctx context.Context, org string, repo *github.Repository) (*github.Repository, error)
	GetRepoPublicKey(ctx context.Context, owner, repo string) (*github.PublicKey, error)
	CreateOrUpdateRepoSecret(ctx context.Context, owner, repo string, secret *github.EncryptedSecret) error
	DispatchWorkflow(ctx context.Context, owner, repo, workflow string, event github.CreateWorkflowDispatchEventRequest) error
}

// SecretsAPI fetches the stored GitHub token.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Service performs GitHub operations for project setup.
type Service struct {
	api    API
	logger *slog.Logger
}

// NewService builds a Service over an authenticated API.
func NewService(api API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger.With("system", "githubops")}
}

// Connect fetches the GitHub token from Secrets Manager and builds an
// authenticated Service. It also returns the raw token for clone URLs.
func Connect(ctx context.Context, secrets SecretsAPI, secretName string, logger *slog.Logger) (*Service, string, error) {
	out, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get github token %s: %w", secretName, err)
	}
	token := aws.ToString(out.SecretString)
	if token == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrEmptyToken, secretName)
	}

	client := github.NewClient(nil).WithAuthToken(token)
	return NewService(restAPI{client: client}, logger), token, nil
}

// restAPI adapts the go-github client to the API interface.
type restAPI struct {
	client *github.Client
}

func (r restAPI) CreateRepo(ctx context.Context, org string, repo *github.Repository) (*github.Repository, error) {
	created, _, err := r.client.Repositories.Create(ctx, org, repo)
	return created, err
}

func (r restAPI) GetRepoPublicKey(ctx context.Context, owner, repo string) (*github.PublicKey, error) {
	key, _, err := r.client.Actions.GetRepoPublicKey(ctx, owner, repo)
	return key, err
}

func (r restAPI) CreateOrUpdateRepoSecret(ctx context.Context, owner, repo string, secret *github.EncryptedSecret) error {
	_, err := r.client.Actions.CreateOrUpdateRepoSecret(ctx, owner, repo, secret)
	return err
}

func (r restAPI) DispatchWorkflow(ctx context.Context, owner, repo, workflow string, event github.CreateWorkflowDispatchEventRequest) error {
	_, err := r.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, owner, repo, workflow, event)
	return err
}

// DeployRepoName is the conventional name for a project's deployment
// repository.
func DeployRepoName(projectID, domainID string) string {
	return fmt.Sprintf("%s-%s-deploy-repo", projectID, domainID)
}

// CreateDeployRepo creates a private, initialized deployment repository in
// the organization and returns its name.
func (s *Service) CreateDeployRepo(ctx context.Context, org, projectID, domainID string) (string, error) {
	name := DeployRepoName(projectID, domainID)
	_, err := s.api.CreateRepo(ctx, org, &github.Repository{
		Name:     github.String(name),
		Private:  github.Bool(true),
		AutoInit: github.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s: %w", ErrRepoCreateFailed, org, name, err)
	}
	s.logger.Info("deploy repository created", "org", org, "repo", name)
	return name, nil
}

// DispatchDeploy triggers the deployment workflow on the deploy repository.
func (s *Service) DispatchDeploy(ctx context.Context, org, repo, workflow, ref string, inputs map[string]any) error {
	err := s.api.DispatchWorkflow(ctx, org, repo, workflow, github.CreateWorkflowDispatchEventRequest{
		Ref:    ref,
		Inputs: inputs,
	})
	if err != nil {
		return fmt.Errorf("dispatch %s on %s/%s: %w", workflow, org, repo, err)
	}
	s.logger.Info("workflow dispatched", "org", org, "repo", repo, "workflow", workflow, "ref", ref)
	return nil
}
