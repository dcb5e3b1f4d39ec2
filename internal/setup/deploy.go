package setup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/githubops"
	"github.com/stonebriar/sagerelay/internal/gitops"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

// CreateDeploy creates the project's deployment repository and seeds it from
// the deploy template.
type CreateDeploy struct {
	GitHub    *githubops.Service
	Git       *gitops.Client
	Token     string
	GitHubCfg *config.GitHubConfig
	Logger    *slog.Logger
}

func (s *CreateDeploy) Name() string { return "create-deploy-repository" }

func (s *CreateDeploy) Run(ctx context.Context, wc workflow.Context) (workflow.Context, error) {
	if wc.Setup.ProfileName == "" {
		return wc, ErrNoProfileName
	}

	name, err := s.GitHub.CreateDeployRepo(ctx, s.GitHubCfg.Organization, wc.ProjectID, wc.DomainID)
	if err != nil {
		return wc, err
	}

	work, err := os.MkdirTemp("", "sagerelay-deploy-")
	if err != nil {
		return wc, err
	}
	defer os.RemoveAll(work)

	templates := filepath.Join(work, "templates")
	templatesURL := gitops.AuthenticatedURL(s.GitHubCfg.TemplatesOrg, s.GitHubCfg.TemplatesRepo, s.Token)
	if err := s.Git.Clone(ctx, templatesURL, templates); err != nil {
		return wc, err
	}

	deploy := filepath.Join(work, "deploy")
	if err := s.Git.Clone(ctx, gitops.AuthenticatedURL(s.GitHubCfg.Organization, name, s.Token), deploy); err != nil {
		return wc, err
	}

	templateDir := filepath.Join(templates, s.GitHubCfg.TemplatesFolder)
	if err := gitops.SeedDeployRepo(templateDir, wc.Setup.ProfileName, deploy); err != nil {
		return wc, err
	}
	if _, err := s.Git.CommitAndPush(ctx, deploy, "Seed model deploy pipeline"); err != nil {
		return wc, err
	}

	s.Logger.Info("deploy repository seeded", "repo", name, "project", wc.ProjectID)
	return wc.WithStatus(workflow.StatusSuccessful), nil
}
