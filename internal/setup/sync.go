package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/stonebriar/sagerelay/internal/approval"
	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/githubops"
	"github.com/stonebriar/sagerelay/internal/gitops"
	"github.com/stonebriar/sagerelay/internal/projects"
	"github.com/stonebriar/sagerelay/internal/workflow"
	"github.com/stonebriar/sagerelay/pkg/storage"
)

// ParamBuildRepo is the project creation parameter naming the build
// repository as owner/name.
const ParamBuildRepo = "gitFullRepositoryId"

// SyncRepos seeds the project's build repository: it resolves the SageMaker
// resources provisioned for the project, grants artifact bucket access,
// publishes the Actions secret set, and pushes the pipeline template. When
// the project's space is still coming up it reports WAITING_FOR_SPACE so the
// machine retries with the accumulated context intact.
type SyncRepos struct {
	Projects    *projects.Service
	GitHub      *githubops.Service
	Git         *gitops.Client
	Token       string
	GitHubCfg   *config.GitHubConfig
	PipelineCfg *config.PipelineConfig
	Region      string
	Logger      *slog.Logger
}

func (s *SyncRepos) Name() string { return "sync-repositories" }

func (s *SyncRepos) Run(ctx context.Context, wc workflow.Context) (workflow.Context, error) {
	domain, err := s.Projects.FindDomain(ctx, wc.ProjectID)
	if err != nil {
		return wc, err
	}

	spaceARN, ready, err := s.Projects.Space(ctx, domain.ID)
	if err != nil {
		return wc, err
	}
	if !ready {
		return wc.WithStatus(workflow.StatusWaitingForSpace), nil
	}

	ownerARN, err := s.Projects.OwnerProfileARN(ctx, domain.ID)
	if err != nil {
		return wc, err
	}

	artifactPath := domain.ArtifactPath
	if artifactPath == "" {
		account, err := s.Projects.Account(ctx)
		if err != nil {
			return wc, err
		}
		artifactPath = projects.DefaultArtifactPath(account, s.Region, wc.DomainID, wc.ProjectID)
	}
	bucket, _, err := storage.ParseURI(artifactPath)
	if err != nil {
		return wc, fmt.Errorf("artifact path %q: %w", artifactPath, err)
	}

	if domain.ExecutionRole != "" {
		if err := s.Projects.GrantArtifactBucket(ctx, domain.ExecutionRole, bucket); err != nil {
			return wc, err
		}
	}

	owner, repo, err := splitRepo(wc.UserParameters[ParamBuildRepo])
	if err != nil {
		return wc, err
	}

	group := wc.Setup.ProjectName + approval.GroupSuffix
	secrets := githubops.ProjectSecrets{
		DomainARN:         domain.ARN,
		SpaceARN:          spaceARN,
		PipelineRoleARN:   domain.ExecutionRole,
		OIDCRole:          s.GitHubCfg.OIDCRoleARN,
		ProjectName:       wc.Setup.ProjectName,
		ProjectID:         wc.ProjectID,
		DataZoneDomain:    wc.DomainID,
		DataZoneScope:     wc.Setup.DomainUnitID,
		DataZoneProject:   wc.ProjectID,
		Region:            s.Region,
		ArtifactBucket:    bucket,
		ModelPackageGroup: group,
		GlueDatabase:      s.PipelineCfg.GlueDatabase,
		GlueTable:         s.PipelineCfg.GlueTable,
	}
	if err := s.GitHub.PublishProjectSecrets(ctx, owner, repo, secrets); err != nil {
		return wc, err
	}

	if err := s.seedRepo(ctx, owner, repo, wc.Setup.ProfileName); err != nil {
		return wc, err
	}

	setup := wc.Setup
	setup.SageMaker = workflow.SageMakerSetup{
		DomainARN:         domain.ARN,
		SpaceARN:          spaceARN,
		UserProfileARN:    ownerARN,
		ExecutionRole:     domain.ExecutionRole,
		ModelPackageGroup: group,
		ArtifactBucket:    bucket,
	}
	return wc.
		WithSetup(setup).
		WithBuildRepo(owner + "/" + repo).
		WithStatus(workflow.StatusSuccessful), nil
}

// seedRepo clones the template and build repositories, copies the build
// template in, and pushes if anything changed.
func (s *SyncRepos) seedRepo(ctx context.Context, owner, repo, profileName string) error {
	if profileName == "" {
		return ErrNoProfileName
	}

	work, err := os.MkdirTemp("", "sagerelay-sync-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	templates := filepath.Join(work, "templates")
	templatesURL := gitops.AuthenticatedURL(s.GitHubCfg.TemplatesOrg, s.GitHubCfg.TemplatesRepo, s.Token)
	if err := s.Git.Clone(ctx, templatesURL, templates); err != nil {
		return err
	}

	build := filepath.Join(work, "build")
	if err := s.Git.Clone(ctx, gitops.AuthenticatedURL(owner, repo, s.Token), build); err != nil {
		return err
	}

	templateDir := filepath.Join(templates, s.GitHubCfg.TemplatesFolder)
	if err := gitops.SeedBuildRepo(templateDir, profileName, build); err != nil {
		return err
	}

	_, err = s.Git.CommitAndPush(ctx, build, "Seed model build pipeline")
	return err
}

func splitRepo(full string) (owner, repo string, err error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadRepoParameter, full)
	}
	return parts[0], parts[1], nil
}
