package githubops_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-github/v66/github"
	"golang.org/x/crypto/nacl/box"

	"github.com/stonebriar/sagerelay/internal/githubops"
)

// fakeAPI records calls and serves a repository public key for sealing.
type fakeAPI struct {
	key       *github.PublicKey
	createErr error

	createdOrg  string
	createdRepo *github.Repository

	mu      sync.Mutex
	secrets []*github.EncryptedSecret

	dispatchedRepo     string
	dispatchedWorkflow string
	dispatchedEvent    github.CreateWorkflowDispatchEventRequest
}

func (f *fakeAPI) CreateRepo(_ context.Context, org string, repo *github.Repository) (*github.Repository, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdOrg = org
	f.createdRepo = repo
	return repo, nil
}

func (f *fakeAPI) GetRepoPublicKey(context.Context, string, string) (*github.PublicKey, error) {
	if f.key == nil {
		return nil, errors.New("no key")
	}
	return f.key, nil
}

func (f *fakeAPI) CreateOrUpdateRepoSecret(_ context.Context, _, _ string, secret *github.EncryptedSecret) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets = append(f.secrets, secret)
	return nil
}

func (f *fakeAPI) DispatchWorkflow(_ context.Context, _, repo, workflow string, event github.CreateWorkflowDispatchEventRequest) error {
	f.dispatchedRepo = repo
	f.dispatchedWorkflow = workflow
	f.dispatchedEvent = event
	return nil
}

// testKeypair generates a sealing keypair and returns the public half in the
// shape the Actions API serves, plus the private half for opening sealed
// values in assertions.
func testKeypair(t *testing.T) (*github.PublicKey, *[32]byte, *[32]byte) {
	t.Helper()
	public, private, err := box.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(public[:])
	return &github.PublicKey{
		KeyID: github.String("key-1"),
		Key:   github.String(encoded),
	}, public, private
}

func testPublicKey(t *testing.T) *github.PublicKey {
	t.Helper()
	key, _, _ := testKeypair(t)
	return key
}

func TestPutSecret(t *testing.T) {
	t.Run("seals against the repository key", func(t *testing.T) {
		key, public, private := testKeypair(t)
		api := &fakeAPI{key: key}
		svc := githubops.NewService(api, discard())

		if err := svc.PutSecret(context.Background(), "acme", "repo", "REGION", "us-east-1"); err != nil {
			t.Fatalf("PutSecret: %v", err)
		}
		if len(api.secrets) != 1 {
			t.Fatalf("secrets = %d, want 1", len(api.secrets))
		}

		secret := api.secrets[0]
		if secret.Name != "REGION" || secret.KeyID != "key-1" {
			t.Errorf("secret = %+v", secret)
		}

		sealed, err := base64.StdEncoding.DecodeString(secret.EncryptedValue)
		if err != nil {
			t.Fatalf("decode sealed value: %v", err)
		}
		opened, ok := box.OpenAnonymous(nil, sealed, public, private)
		if !ok {
			t.Fatal("sealed value did not open")
		}
		if string(opened) != "us-east-1" {
			t.Errorf("opened = %q", opened)
		}
	})

	t.Run("rejects a malformed repository key", func(t *testing.T) {
		api := &fakeAPI{key: &github.PublicKey{
			KeyID: github.String("key-1"),
			Key:   github.String("not base64!"),
		}}
		svc := githubops.NewService(api, discard())

		err := svc.PutSecret(context.Background(), "acme", "repo", "REGION", "us-east-1")
		if !errors.Is(err, githubops.ErrSealFailed) {
			t.Errorf("err = %v, want ErrSealFailed", err)
		}
	})
}

func TestPublishProjectSecrets(t *testing.T) {
	t.Run("publishes every non-empty value", func(t *testing.T) {
		api := &fakeAPI{key: testPublicKey(t)}
		svc := githubops.NewService(api, discard())

		secrets := githubops.ProjectSecrets{
			DomainARN:         "arn:domain",
			SpaceARN:          "arn:space",
			PipelineRoleARN:   "arn:role",
			ProjectName:       "marketing",
			ProjectID:         "prj-123",
			DataZoneDomain:    "dzd-456",
			DataZoneProject:   "prj-123",
			Region:            "us-east-1",
			ArtifactBucket:    "artifacts",
			ModelPackageGroup: "marketing-models",
			GlueDatabase:      "marketing_db",
			GlueTable:         "bank_marketing",
		}
		if err := svc.PublishProjectSecrets(context.Background(), "acme", "repo", secrets); err != nil {
			t.Fatalf("PublishProjectSecrets: %v", err)
		}

		// OIDCRole and DataZoneScope are empty and skipped.
		if len(api.secrets) != 12 {
			t.Fatalf("secrets = %d, want 12", len(api.secrets))
		}

		names := make([]string, len(api.secrets))
		for i, s := range api.secrets {
			names[i] = s.Name
		}
		for _, want := range []string{
			githubops.SecretModelPackageGroup,
			githubops.SecretGlueDatabase,
			githubops.SecretArtifactBucket,
		} {
			found := false
			for _, name := range names {
				if name == want {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("missing secret %s", want)
			}
		}
	})

	t.Run("fails when the public key is unavailable", func(t *testing.T) {
		svc := githubops.NewService(&fakeAPI{}, discard())

		err := svc.PublishProjectSecrets(context.Background(), "acme", "repo", githubops.ProjectSecrets{
			Region: "us-east-1",
		})
		if err == nil {
			t.Fatal("expected an error from the missing public key")
		}
	})
}
