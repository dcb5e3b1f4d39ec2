// Package setup provides the concrete workflow steps for project setup:
// polling project status, seeding the build repository, and creating the
// deployment repository.
package setup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stonebriar/sagerelay/internal/projects"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

// CheckStatus polls the DataZone project and, once its environments have
// deployed, resolves the profile metadata the later steps need.
type CheckStatus struct {
	Projects *projects.Service
	Logger   *slog.Logger
}

func (s *CheckStatus) Name() string { return "check-project-status" }

func (s *CheckStatus) Run(ctx context.Context, wc workflow.Context) (workflow.Context, error) {
	info, err := s.Projects.Status(ctx, wc.DomainID, wc.ProjectID)
	if err != nil {
		return wc, err
	}

	switch info.Status {
	case workflow.StatusFailed:
		return wc.WithError(errors.New(info.Reason)), nil
	case workflow.StatusSuccessful:
		setup := wc.Setup
		setup.ProjectName = info.Name
		setup.DomainUnitID = info.DomainUnitID
		setup.ProjectProfileID = info.ProfileID

		if info.ProfileID != "" {
			profile, err := s.Projects.ProjectProfile(ctx, wc.DomainID, info.ProfileID)
			if err != nil {
				return wc, err
			}
			setup.ProfileName = profile.Name
			setup.DeployAccount = profile.DeployAccount
		}
		return wc.WithSetup(setup).WithStatus(workflow.StatusSuccessful), nil
	default:
		s.Logger.Info("project still deploying", "project", wc.ProjectID)
		return wc.WithStatus(workflow.StatusPending), nil
	}
}
