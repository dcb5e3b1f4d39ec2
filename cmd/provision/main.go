// Command provision creates the workflow infrastructure: the GitHub token
// secret, the project setup state machine, and the EventBridge rules that
// feed it. Every operation is an upsert, so re-running is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/internal/provision"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

type options struct {
	roleARN         string
	targetRoleARN   string
	checkStatusARN  string
	syncReposARN    string
	createDeployARN string
	approvalARN     string
	tokenFile       string
}

func main() {
	var opts options
	flag.StringVar(&opts.roleARN, "role-arn", "", "execution role for the state machine (required)")
	flag.StringVar(&opts.targetRoleARN, "target-role-arn", "", "role EventBridge assumes to invoke targets")
	flag.StringVar(&opts.checkStatusARN, "check-status-arn", "", "task target for the status check step (required)")
	flag.StringVar(&opts.syncReposARN, "sync-repos-arn", "", "task target for the repository sync step (required)")
	flag.StringVar(&opts.createDeployARN, "create-deploy-arn", "", "task target for the deploy repository step (required)")
	flag.StringVar(&opts.approvalARN, "approval-arn", "", "target for model approval events (required)")
	flag.StringVar(&opts.tokenFile, "github-token-file", "", "file holding the GitHub token to store (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), opts, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.roleARN == "" || opts.checkStatusARN == "" || opts.syncReposARN == "" ||
		opts.createDeployARN == "" || opts.approvalARN == "" {
		return fmt.Errorf("-role-arn, -check-status-arn, -sync-repos-arn, -create-deploy-arn, and -approval-arn are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return err
	}
	provisioner := provision.New(infra.AWS, logger)

	if opts.tokenFile != "" {
		token, err := os.ReadFile(opts.tokenFile)
		if err != nil {
			return fmt.Errorf("read token file: %w", err)
		}
		if err := provisioner.EnsureSecret(ctx, cfg.GitHub.TokenSecretName, strings.TrimSpace(string(token))); err != nil {
			return err
		}
	}

	definition, err := workflow.RenderASL(&cfg.Workflow, workflow.ResourceARNs{
		CheckStatus:  opts.checkStatusARN,
		SyncRepos:    opts.syncReposARN,
		CreateDeploy: opts.createDeployARN,
	})
	if err != nil {
		return err
	}

	machineARN, err := provisioner.EnsureStateMachine(ctx, workflow.MachineName, definition, opts.roleARN)
	if err != nil {
		return err
	}
	logger.Info("state machine ready", "arn", machineARN)

	if err := provisioner.EnsureRules(ctx, machineARN, opts.approvalARN, opts.targetRoleARN); err != nil {
		return err
	}

	logger.Info("provisioning complete", "machine", workflow.MachineName)
	return nil
}
