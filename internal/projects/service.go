// Package projects resolves DataZone project metadata and the SageMaker
// resources provisioned for a project, and grants the access those resources
// need. It is the read side of the setup workflow: steps call into it and
// fold the results into the workflow context.
package projects

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/datazone"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DataZoneAPI is the subset of the DataZone client the service depends on.
type DataZoneAPI interface {
	GetProject(ctx context.Context, in *datazone.GetProjectInput, opts ...func(*datazone.Options)) (*datazone.GetProjectOutput, error)
	GetProjectProfile(ctx context.Context, in *datazone.GetProjectProfileInput, opts ...func(*datazone.Options)) (*datazone.GetProjectProfileOutput, error)
	GetDomain(ctx context.Context, in *datazone.GetDomainInput, opts ...func(*datazone.Options)) (*datazone.GetDomainOutput, error)
	ListDomains(ctx context.Context, in *datazone.ListDomainsInput, opts ...func(*datazone.Options)) (*datazone.ListDomainsOutput, error)
	ListProjects(ctx context.Context, in *datazone.ListProjectsInput, opts ...func(*datazone.Options)) (*datazone.ListProjectsOutput, error)
}

// SageMakerAPI is the subset of the SageMaker client used for resource
// discovery.
type SageMakerAPI interface {
	ListDomains(ctx context.Context, in *sagemaker.ListDomainsInput, opts ...func(*sagemaker.Options)) (*sagemaker.ListDomainsOutput, error)
	DescribeDomain(ctx context.Context, in *sagemaker.DescribeDomainInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribeDomainOutput, error)
	ListTags(ctx context.Context, in *sagemaker.ListTagsInput, opts ...func(*sagemaker.Options)) (*sagemaker.ListTagsOutput, error)
	ListSpaces(ctx context.Context, in *sagemaker.ListSpacesInput, opts ...func(*sagemaker.Options)) (*sagemaker.ListSpacesOutput, error)
	DescribeSpace(ctx context.Context, in *sagemaker.DescribeSpaceInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribeSpaceOutput, error)
	ListUserProfiles(ctx context.Context, in *sagemaker.ListUserProfilesInput, opts ...func(*sagemaker.Options)) (*sagemaker.ListUserProfilesOutput, error)
	DescribeUserProfile(ctx context.Context, in *sagemaker.DescribeUserProfileInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribeUserProfileOutput, error)
}

// IAMAPI is the subset of the IAM client used for access grants.
type IAMAPI interface {
	PutRolePolicy(ctx context.Context, in *iam.PutRolePolicyInput, opts ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
}

// STSAPI resolves the calling account.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, opts ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Service resolves projects and their SageMaker resources.
type Service struct {
	datazone  DataZoneAPI
	sagemaker SageMakerAPI
	iam       IAMAPI
	sts       STSAPI
	region    string
	logger    *slog.Logger
}

// New builds a Service from an AWS configuration.
func New(awsCfg aws.Config, logger *slog.Logger) *Service {
	return &Service{
		datazone:  datazone.NewFromConfig(awsCfg),
		sagemaker: sagemaker.NewFromConfig(awsCfg),
		iam:       iam.NewFromConfig(awsCfg),
		sts:       sts.NewFromConfig(awsCfg),
		region:    awsCfg.Region,
		logger:    logger.With("system", "projects"),
	}
}

// NewWithAPIs builds a Service around existing clients.
func NewWithAPIs(dz DataZoneAPI, sm SageMakerAPI, im IAMAPI, st STSAPI, region string, logger *slog.Logger) *Service {
	return &Service{
		datazone:  dz,
		sagemaker: sm,
		iam:       im,
		sts:       st,
		region:    region,
		logger:    logger.With("system", "projects"),
	}
}
