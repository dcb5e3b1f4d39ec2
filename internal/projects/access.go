package projects

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ArtifactPolicyName is the inline policy attached to the project execution
// role for artifact bucket access.
const ArtifactPolicyName = "SageMakerArtifactBucketAccess"

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

// GrantArtifactBucket attaches an inline policy to the role granting
// read/write access to the artifact bucket.
func (s *Service) GrantArtifactBucket(ctx context.Context, roleARN, bucket string) error {
	role, err := RoleName(roleARN)
	if err != nil {
		return err
	}

	doc, err := json.Marshal(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Effect: "Allow",
				Action: []string{"s3:GetObject", "s3:PutObject", "s3:DeleteObject", "s3:ListBucket"},
				Resource: []string{
					fmt.Sprintf("arn:aws:s3:::%s", bucket),
					fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal bucket policy: %w", err)
	}

	if _, err := s.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(role),
		PolicyName:     aws.String(ArtifactPolicyName),
		PolicyDocument: aws.String(string(doc)),
	}); err != nil {
		return fmt.Errorf("put role policy %s on %s: %w", ArtifactPolicyName, role, err)
	}

	s.logger.Info("artifact bucket access granted", "role", role, "bucket", bucket)
	return nil
}

// Account resolves the calling AWS account.
func (s *Service) Account(ctx context.Context) (string, error) {
	out, err := s.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}
