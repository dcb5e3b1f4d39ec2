package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// Tags SageMaker Unified Studio stamps on the domains it provisions for
// DataZone projects.
const (
	TagDataZoneProject = "AmazonDataZoneProject"
	TagProjectS3Path   = "ProjectS3Path"
)

// SageMakerDomain is the SageMaker domain provisioned for a project.
type SageMakerDomain struct {
	ID            string
	ARN           string
	ExecutionRole string
	ArtifactPath  string
}

// FindDomain locates the SageMaker domain tagged with the given DataZone
// project identifier. The project's S3 artifact path is read from the domain
// tags when present; callers fall back to the conventional path otherwise.
func (s *Service) FindDomain(ctx context.Context, projectID string) (SageMakerDomain, error) {
	var token *string
	for {
		out, err := s.sagemaker.ListDomains(ctx, &sagemaker.ListDomainsInput{NextToken: token})
		if err != nil {
			return SageMakerDomain{}, fmt.Errorf("list sm domains: %w", err)
		}
		for _, domain := range out.Domains {
			match, err := s.matchDomain(ctx, aws.ToString(domain.DomainArn), projectID)
			if err != nil {
				return SageMakerDomain{}, err
			}
			if match == nil {
				continue
			}
			described, err := s.sagemaker.DescribeDomain(ctx, &sagemaker.DescribeDomainInput{
				DomainId: domain.DomainId,
			})
			if err != nil {
				return SageMakerDomain{}, fmt.Errorf("describe sm domain %s: %w", aws.ToString(domain.DomainId), err)
			}
			found := SageMakerDomain{
				ID:           aws.ToString(domain.DomainId),
				ARN:          aws.ToString(described.DomainArn),
				ArtifactPath: match[TagProjectS3Path],
			}
			if described.DefaultUserSettings != nil {
				found.ExecutionRole = aws.ToString(described.DefaultUserSettings.ExecutionRole)
			}
			s.logger.Info("sagemaker domain resolved", "project", projectID, "domain", found.ID)
			return found, nil
		}
		if out.NextToken == nil {
			return SageMakerDomain{}, fmt.Errorf("%w: project %s", ErrDomainNotFound, projectID)
		}
		token = out.NextToken
	}
}

// matchDomain returns the domain's tags when it is tagged for the project,
// nil otherwise.
func (s *Service) matchDomain(ctx context.Context, domainARN, projectID string) (map[string]string, error) {
	tags := map[string]string{}
	var token *string
	for {
		out, err := s.sagemaker.ListTags(ctx, &sagemaker.ListTagsInput{
			ResourceArn: aws.String(domainARN),
			NextToken:   token,
		})
		if err != nil {
			return nil, fmt.Errorf("list tags %s: %w", domainARN, err)
		}
		for _, tag := range out.Tags {
			tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	if tags[TagDataZoneProject] != projectID {
		return nil, nil
	}
	return tags, nil
}

// Space resolves the project's space within a SageMaker domain. Ready is
// true only once the space is in service; a missing space is not an error so
// the caller can keep waiting.
func (s *Service) Space(ctx context.Context, smDomainID string) (arn string, ready bool, err error) {
	out, err := s.sagemaker.ListSpaces(ctx, &sagemaker.ListSpacesInput{
		DomainIdEquals: aws.String(smDomainID),
	})
	if err != nil {
		return "", false, fmt.Errorf("list spaces %s: %w", smDomainID, err)
	}
	if len(out.Spaces) == 0 {
		return "", false, nil
	}

	space := out.Spaces[0]
	if space.Status != smtypes.SpaceStatusInService {
		return "", false, nil
	}

	described, err := s.sagemaker.DescribeSpace(ctx, &sagemaker.DescribeSpaceInput{
		DomainId:  aws.String(smDomainID),
		SpaceName: space.SpaceName,
	})
	if err != nil {
		return "", false, fmt.Errorf("describe space %s: %w", aws.ToString(space.SpaceName), err)
	}
	return aws.ToString(described.SpaceArn), true, nil
}

// OwnerProfileARN resolves the first user profile of a SageMaker domain,
// which Unified Studio creates for the project owner.
func (s *Service) OwnerProfileARN(ctx context.Context, smDomainID string) (string, error) {
	out, err := s.sagemaker.ListUserProfiles(ctx, &sagemaker.ListUserProfilesInput{
		DomainIdEquals: aws.String(smDomainID),
	})
	if err != nil {
		return "", fmt.Errorf("list user profiles %s: %w", smDomainID, err)
	}
	if len(out.UserProfiles) == 0 {
		return "", fmt.Errorf("%w: domain %s", ErrNoUserProfile, smDomainID)
	}

	described, err := s.sagemaker.DescribeUserProfile(ctx, &sagemaker.DescribeUserProfileInput{
		DomainId:        aws.String(smDomainID),
		UserProfileName: out.UserProfiles[0].UserProfileName,
	})
	if err != nil {
		return "", fmt.Errorf("describe user profile: %w", err)
	}
	return aws.ToString(described.UserProfileArn), nil
}

// DefaultArtifactPath is the conventional S3 path for a project's artifacts
// when the domain carries no explicit path tag.
func DefaultArtifactPath(account, region, domainID, projectID string) string {
	return fmt.Sprintf("s3://amazon-sagemaker-%s-%s/dzd_%s/%s", account, region, domainID, projectID)
}

// RoleName extracts the role name from a role ARN.
func RoleName(roleARN string) (string, error) {
	idx := strings.LastIndex(roleARN, "/")
	if idx < 0 || idx == len(roleARN)-1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoleARN, roleARN)
	}
	return roleARN[idx+1:], nil
}
