package githubops

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/go-github/v66/github"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/sync/errgroup"
)

// publishWorkers bounds concurrent secret puts against one repository.
const publishWorkers = 4

// Actions secret names published to seeded repositories.
const (
	SecretDomainARN         = "SAGEMAKER_DOMAIN_ARN"
	SecretSpaceARN          = "SAGEMAKER_SPACE_ARN"
	SecretPipelineRoleARN   = "SAGEMAKER_PIPELINE_ROLE_ARN"
	SecretOIDCRole          = "OIDC_ROLE_GITHUB_WORKFLOW"
	SecretProjectName       = "SAGEMAKER_PROJECT_NAME"
	SecretProjectID         = "SAGEMAKER_PROJECT_ID"
	SecretDataZoneDomain    = "AMAZON_DATAZONE_DOMAIN"
	SecretDataZoneScope     = "AMAZON_DATAZONE_SCOPENAME"
	SecretDataZoneProject   = "AMAZON_DATAZONE_PROJECT"
	SecretRegion            = "REGION"
	SecretArtifactBucket    = "ARTIFACT_BUCKET"
	SecretModelPackageGroup = "MODEL_PACKAGE_GROUP_NAME"
	SecretGlueDatabase      = "GLUE_DATABASE"
	SecretGlueTable         = "GLUE_TABLE"
)

// ProjectSecrets is the full secret set a seeded repository needs to run its
// pipeline workflows.
type ProjectSecrets struct {
	DomainARN         string
	SpaceARN          string
	PipelineRoleARN   string
	OIDCRole          string
	ProjectName       string
	ProjectID         string
	DataZoneDomain    string
	DataZoneScope     string
	DataZoneProject   string
	Region            string
	ArtifactBucket    string
	ModelPackageGroup string
	GlueDatabase      string
	GlueTable         string
}

func (p ProjectSecrets) values() map[string]string {
	return map[string]string{
		SecretDomainARN:         p.DomainARN,
		SecretSpaceARN:          p.SpaceARN,
		SecretPipelineRoleARN:   p.PipelineRoleARN,
		SecretOIDCRole:          p.OIDCRole,
		SecretProjectName:       p.ProjectName,
		SecretProjectID:         p.ProjectID,
		SecretDataZoneDomain:    p.DataZoneDomain,
		SecretDataZoneScope:     p.DataZoneScope,
		SecretDataZoneProject:   p.DataZoneProject,
		SecretRegion:            p.Region,
		SecretArtifactBucket:    p.ArtifactBucket,
		SecretModelPackageGroup: p.ModelPackageGroup,
		SecretGlueDatabase:      p.GlueDatabase,
		SecretGlueTable:         p.GlueTable,
	}
}

// PutSecret seals a single value against the repository's public key and
// publishes it as an Actions secret.
func (s *Service) PutSecret(ctx context.Context, owner, repo, name, value string) error {
	key, err := s.api.GetRepoPublicKey(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("get public key %s/%s: %w", owner, repo, err)
	}
	return s.putSealed(ctx, owner, repo, key, name, value)
}

func (s *Service) putSealed(ctx context.Context, owner, repo string, key *github.PublicKey, name, value string) error {
	sealed, err := seal(key.GetKey(), value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSealFailed, name, err)
	}

	if err := s.api.CreateOrUpdateRepoSecret(ctx, owner, repo, &github.EncryptedSecret{
		Name:           name,
		KeyID:          key.GetKeyID(),
		EncryptedValue: sealed,
	}); err != nil {
		return fmt.Errorf("put secret %s on %s/%s: %w", name, owner, repo, err)
	}
	return nil
}

// PublishProjectSecrets publishes the full secret set, skipping empty
// values. The repository public key is fetched once; individual puts run
// with bounded errgroup concurrency.
func (s *Service) PublishProjectSecrets(ctx context.Context, owner, repo string, secrets ProjectSecrets) error {
	key, err := s.api.GetRepoPublicKey(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("get public key %s/%s: %w", owner, repo, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(publishWorkers)
	for name, value := range secrets.values() {
		if value == "" {
			continue
		}
		g.Go(func() error {
			return s.putSealed(gctx, owner, repo, key, name, value)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("project secrets published", "owner", owner, "repo", repo)
	return nil
}

// seal encrypts a value with the repository's base64 NaCl public key, as the
// Actions secrets API requires.
func seal(publicKey, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(raw))
	}

	var recipient [32]byte
	copy(recipient[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &recipient, rand.Reader)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
