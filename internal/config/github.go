package config

import (
	"fmt"
	"os"
)

const (
	EnvGitHubTemplatesOrg    = "SAGERELAY_GITHUB_TEMPLATES_ORG"
	EnvGitHubTemplatesRepo   = "SAGERELAY_GITHUB_TEMPLATES_REPO"
	EnvGitHubOrganization    = "SAGERELAY_GITHUB_ORGANIZATION"
	EnvGitHubTokenSecretName = "SAGERELAY_GITHUB_TOKEN_SECRET_NAME"
	EnvGitHubOIDCRoleARN     = "SAGERELAY_GITHUB_OIDC_ROLE_ARN"
)

// GitHubConfig holds source-control hosting parameters: the public template
// organization synced into build repositories, the private organization where
// build and deploy repositories live, and the token secret used for API and
// clone access.
type GitHubConfig struct {
	TemplatesOrg    string `toml:"templates_org"`
	TemplatesRepo   string `toml:"templates_repo"`
	TemplatesFolder string `toml:"templates_folder"`
	TemplatesBranch string `toml:"templates_branch"`
	Organization    string `toml:"organization"`
	DeployBranch    string `toml:"deploy_branch"`
	DeployWorkflow  string `toml:"deploy_workflow"`
	TokenSecretName string `toml:"token_secret_name"`
	OIDCRoleARN     string `toml:"oidc_role_arn"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *GitHubConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *GitHubConfig) Merge(overlay *GitHubConfig) {
	if overlay.TemplatesOrg != "" {
		c.TemplatesOrg = overlay.TemplatesOrg
	}
	if overlay.TemplatesRepo != "" {
		c.TemplatesRepo = overlay.TemplatesRepo
	}
	if overlay.TemplatesFolder != "" {
		c.TemplatesFolder = overlay.TemplatesFolder
	}
	if overlay.TemplatesBranch != "" {
		c.TemplatesBranch = overlay.TemplatesBranch
	}
	if overlay.Organization != "" {
		c.Organization = overlay.Organization
	}
	if overlay.DeployBranch != "" {
		c.DeployBranch = overlay.DeployBranch
	}
	if overlay.DeployWorkflow != "" {
		c.DeployWorkflow = overlay.DeployWorkflow
	}
	if overlay.TokenSecretName != "" {
		c.TokenSecretName = overlay.TokenSecretName
	}
	if overlay.OIDCRoleARN != "" {
		c.OIDCRoleARN = overlay.OIDCRoleARN
	}
}

func (c *GitHubConfig) loadDefaults() {
	if c.TemplatesBranch == "" {
		c.TemplatesBranch = "main"
	}
	if c.TemplatesFolder == "" {
		c.TemplatesFolder = "seed-code"
	}
	if c.DeployBranch == "" {
		c.DeployBranch = "main"
	}
	if c.DeployWorkflow == "" {
		c.DeployWorkflow = "deploy_model_pipeline.yml"
	}
	if c.TokenSecretName == "" {
		c.TokenSecretName = "sagerelay-github-token"
	}
}

func (c *GitHubConfig) loadEnv() {
	if v := os.Getenv(EnvGitHubTemplatesOrg); v != "" {
		c.TemplatesOrg = v
	}
	if v := os.Getenv(EnvGitHubTemplatesRepo); v != "" {
		c.TemplatesRepo = v
	}
	if v := os.Getenv(EnvGitHubOrganization); v != "" {
		c.Organization = v
	}
	if v := os.Getenv(EnvGitHubTokenSecretName); v != "" {
		c.TokenSecretName = v
	}
	if v := os.Getenv(EnvGitHubOIDCRoleARN); v != "" {
		c.OIDCRoleARN = v
	}
}

func (c *GitHubConfig) validate() error {
	if c.TokenSecretName == "" {
		return fmt.Errorf("token_secret_name required")
	}
	return nil
}
