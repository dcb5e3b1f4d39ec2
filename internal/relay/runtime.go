// Package relay assembles the event intake module: it receives project
// creation and model approval events over HTTP and drives the setup workflow
// and deployment dispatch.
package relay

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/stonebriar/sagerelay/internal/approval"
	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/githubops"
	"github.com/stonebriar/sagerelay/internal/gitops"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/internal/projects"
	"github.com/stonebriar/sagerelay/internal/setup"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

// Runtime extends Infrastructure with the domain services the relay drives.
type Runtime struct {
	*infrastructure.Infrastructure
	Projects *projects.Service
	GitHub   *githubops.Service
	Git      *gitops.Client
	Machine  *workflow.Machine
	Approval *approval.Handler
}

// NewRuntime resolves the GitHub token and assembles the workflow machine
// and approval handler over shared infrastructure.
func NewRuntime(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "relay")

	svc := projects.New(infra.AWS, logger)

	secrets := secretsmanager.NewFromConfig(infra.AWS)
	gh, token, err := githubops.Connect(ctx, secrets, cfg.GitHub.TokenSecretName, logger)
	if err != nil {
		return nil, fmt.Errorf("github connect failed: %w", err)
	}

	git := gitops.NewClient(gitops.ExecRunner{}, logger)

	machine, err := workflow.NewMachine(&cfg.Workflow, logger, workflow.Steps{
		CheckStatus: &setup.CheckStatus{Projects: svc, Logger: logger},
		SyncRepos: &setup.SyncRepos{
			Projects:    svc,
			GitHub:      gh,
			Git:         git,
			Token:       token,
			GitHubCfg:   &cfg.GitHub,
			PipelineCfg: &cfg.Pipeline,
			Region:      cfg.Region,
			Logger:      logger,
		},
		CreateDeploy: &setup.CreateDeploy{
			GitHub:    gh,
			Git:       git,
			Token:     token,
			GitHubCfg: &cfg.GitHub,
			Logger:    logger,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			AWS:       infra.AWS,
			Storage:   infra.Storage,
		},
		Projects: svc,
		GitHub:   gh,
		Git:      git,
		Machine:  machine,
		Approval: approval.New(svc, gh, &cfg.GitHub, logger),
	}, nil
}
