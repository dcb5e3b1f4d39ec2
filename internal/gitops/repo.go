package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	cloneAttempts = 3
	cloneDelay    = 30 * time.Second

	commitName  = "sagerelay"
	commitEmail = "sagerelay@users.noreply.github.com"
)

// Client drives git against local working copies.
type Client struct {
	runner Runner
	logger *slog.Logger
}

// NewClient builds a Client over a runner.
func NewClient(runner Runner, logger *slog.Logger) *Client {
	return &Client{runner: runner, logger: logger.With("system", "gitops")}
}

// AuthenticatedURL builds a clone URL carrying an installation token.
func AuthenticatedURL(org, repo, token string) string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, org, repo)
}

// Clone clones a repository into dir, retrying on transient failures. Fresh
// repositories can take a moment to become cloneable after creation.
func (c *Client) Clone(ctx context.Context, url, dir string) error {
	err := retry.Do(
		func() error {
			_, err := c.runner.Run(ctx, "", "clone", url, dir)
			return err
		},
		retry.Attempts(cloneAttempts),
		retry.Delay(cloneDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCloneFailed, err)
	}
	return nil
}

// HasChanges reports whether the working tree differs from HEAD.
func (c *Client) HasChanges(ctx context.Context, dir string) (bool, error) {
	out, err := c.runner.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitAndPush stages everything, commits, and pushes. When the tree is
// clean it does nothing and reports false.
func (c *Client) CommitAndPush(ctx context.Context, dir, message string) (bool, error) {
	if _, err := c.runner.Run(ctx, dir, "add", "-A"); err != nil {
		return false, err
	}
	// workflow files live under .github, which seeded trees often ignore
	if _, err := c.runner.Run(ctx, dir, "add", "-f", ".github"); err != nil {
		c.logger.Debug("no .github directory to stage", "dir", dir)
	}

	changed, err := c.HasChanges(ctx, dir)
	if err != nil {
		return false, err
	}
	if !changed {
		c.logger.Info("working tree clean, nothing to push", "dir", dir)
		return false, nil
	}

	if _, err := c.runner.Run(ctx, dir,
		"-c", "user.name="+commitName,
		"-c", "user.email="+commitEmail,
		"commit", "-m", message,
	); err != nil {
		return false, err
	}
	if _, err := c.runner.Run(ctx, dir, "push"); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPushFailed, err)
	}

	c.logger.Info("changes pushed", "dir", dir)
	return true, nil
}
