// Package approval reacts to model package approvals by dispatching the
// deployment workflow on the project's deploy repository.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/events"
	"github.com/stonebriar/sagerelay/internal/githubops"
	"github.com/stonebriar/sagerelay/internal/projects"
)

// GroupSuffix is appended to a project name to form its model package group.
const GroupSuffix = "-models"

// StatusApproved is the approval status that triggers deployment.
const StatusApproved = "Approved"

var ErrUnexpectedGroup = errors.New("model package group does not follow project naming")

// Handler dispatches deployments for approved model packages.
type Handler struct {
	projects *projects.Service
	github   *githubops.Service
	cfg      *config.GitHubConfig
	logger   *slog.Logger
}

// New builds a Handler.
func New(svc *projects.Service, gh *githubops.Service, cfg *config.GitHubConfig, logger *slog.Logger) *Handler {
	return &Handler{
		projects: svc,
		github:   gh,
		cfg:      cfg,
		logger:   logger.With("system", "approval"),
	}
}

// ProjectName derives the owning project's name from a model package group.
func ProjectName(group string) (string, error) {
	name := strings.TrimSuffix(group, GroupSuffix)
	if name == group || name == "" {
		return "", fmt.Errorf("%w: %q", ErrUnexpectedGroup, group)
	}
	return name, nil
}

// Handle processes a model package state change. Only approvals trigger a
// dispatch; every other transition is logged and ignored.
func (h *Handler) Handle(ctx context.Context, change events.ModelPackageChange) error {
	if change.ApprovalStatus != StatusApproved {
		h.logger.Info("ignoring model package transition",
			"group", change.GroupName,
			"status", change.ApprovalStatus,
		)
		return nil
	}

	projectName, err := ProjectName(change.GroupName)
	if err != nil {
		return err
	}

	projectID, domainID, err := h.projects.FindProject(ctx, projectName)
	if err != nil {
		return fmt.Errorf("resolve project %s: %w", projectName, err)
	}

	repo := githubops.DeployRepoName(projectID, domainID)
	inputs := map[string]any{
		"model_package_arn":   change.PackageARN,
		"model_package_group": change.GroupName,
	}
	if err := h.github.DispatchDeploy(ctx, h.cfg.Organization, repo, h.cfg.DeployWorkflow, h.cfg.DeployBranch, inputs); err != nil {
		return err
	}

	h.logger.Info("deployment dispatched",
		"project", projectName,
		"repo", repo,
		"model_package", change.PackageARN,
	)
	return nil
}
