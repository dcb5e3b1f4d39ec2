package projects

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/datazone"
	dztypes "github.com/aws/aws-sdk-go-v2/service/datazone/types"

	"github.com/stonebriar/sagerelay/internal/workflow"
)

// Info is the resolved state of a DataZone project.
type Info struct {
	Name         string
	Status       workflow.Status
	ProfileID    string
	DomainUnitID string
	Reason       string
}

// Profile is the resolved project profile.
type Profile struct {
	Name          string
	DeployAccount string
}

// Status fetches the project and folds its deployment state into a workflow
// status: successful once every environment deployed, failed on any
// deployment failure, pending otherwise.
func (s *Service) Status(ctx context.Context, domainID, projectID string) (Info, error) {
	out, err := s.datazone.GetProject(ctx, &datazone.GetProjectInput{
		DomainIdentifier: aws.String(domainID),
		Identifier:       aws.String(projectID),
	})
	if err != nil {
		return Info{}, fmt.Errorf("get project %s: %w", projectID, err)
	}

	info := Info{
		Name:         aws.ToString(out.Name),
		Status:       workflow.StatusPending,
		DomainUnitID: aws.ToString(out.DomainUnitId),
		ProfileID:    aws.ToString(out.ProjectProfileId),
	}

	if out.EnvironmentDeploymentDetails != nil {
		switch out.EnvironmentDeploymentDetails.OverallDeploymentStatus {
		case dztypes.OverallDeploymentStatusSuccessful:
			info.Status = workflow.StatusSuccessful
		case dztypes.OverallDeploymentStatusFailedValidation,
			dztypes.OverallDeploymentStatusFailedDeployment:
			info.Status = workflow.StatusFailed
			info.Reason = deploymentFailureReason(out.EnvironmentDeploymentDetails)
		}
	}

	return info, nil
}

// ProjectProfile fetches the profile a project was created from. The deploy
// account is read from the first environment configuration carrying one.
func (s *Service) ProjectProfile(ctx context.Context, domainID, profileID string) (Profile, error) {
	out, err := s.datazone.GetProjectProfile(ctx, &datazone.GetProjectProfileInput{
		DomainIdentifier: aws.String(domainID),
		Identifier:       aws.String(profileID),
	})
	if err != nil {
		return Profile{}, fmt.Errorf("get project profile %s: %w", profileID, err)
	}

	profile := Profile{Name: aws.ToString(out.Name)}
	for _, env := range out.EnvironmentConfigurations {
		if acct, ok := env.AwsAccount.(*dztypes.AwsAccountMemberAwsAccountId); ok {
			profile.DeployAccount = acct.Value
			break
		}
	}
	return profile, nil
}

// DomainName fetches the display name of a DataZone domain.
func (s *Service) DomainName(ctx context.Context, domainID string) (string, error) {
	out, err := s.datazone.GetDomain(ctx, &datazone.GetDomainInput{
		Identifier: aws.String(domainID),
	})
	if err != nil {
		return "", fmt.Errorf("get domain %s: %w", domainID, err)
	}
	return aws.ToString(out.Name), nil
}

// FindProject locates a project by name across all domains and returns its
// project and domain identifiers.
func (s *Service) FindProject(ctx context.Context, name string) (projectID, domainID string, err error) {
	var token *string
	for {
		domains, err := s.datazone.ListDomains(ctx, &datazone.ListDomainsInput{NextToken: token})
		if err != nil {
			return "", "", fmt.Errorf("list domains: %w", err)
		}
		for _, domain := range domains.Items {
			projects, err := s.datazone.ListProjects(ctx, &datazone.ListProjectsInput{
				DomainIdentifier: domain.Id,
				Name:             aws.String(name),
			})
			if err != nil {
				return "", "", fmt.Errorf("list projects in %s: %w", aws.ToString(domain.Id), err)
			}
			for _, project := range projects.Items {
				if aws.ToString(project.Name) == name {
					return aws.ToString(project.Id), aws.ToString(domain.Id), nil
				}
			}
		}
		if domains.NextToken == nil {
			return "", "", fmt.Errorf("%w: %s", ErrProjectNotFound, name)
		}
		token = domains.NextToken
	}
}

func deploymentFailureReason(details *dztypes.EnvironmentDeploymentDetails) string {
	for env, errs := range details.EnvironmentFailureReasons {
		for _, e := range errs {
			return fmt.Sprintf("%s: %s", env, aws.ToString(e.Message))
		}
	}
	return "environment deployment failed"
}
