// Package provision creates the AWS resources the setup workflow runs on:
// the Step Functions state machine, the EventBridge rules that feed it, and
// the Secrets Manager entry holding the GitHub token. Every operation is an
// upsert so provisioning is safe to repeat.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
)

// Rule names for the event feeds.
const (
	RuleProjectCreated = "sagerelay-project-created"
	RuleModelApproval  = "sagerelay-model-approval"
)

// SFNAPI is the subset of the Step Functions client the provisioner uses.
type SFNAPI interface {
	CreateStateMachine(ctx context.Context, in *sfn.CreateStateMachineInput, opts ...func(*sfn.Options)) (*sfn.CreateStateMachineOutput, error)
	UpdateStateMachine(ctx context.Context, in *sfn.UpdateStateMachineInput, opts ...func(*sfn.Options)) (*sfn.UpdateStateMachineOutput, error)
	ListStateMachines(ctx context.Context, in *sfn.ListStateMachinesInput, opts ...func(*sfn.Options)) (*sfn.ListStateMachinesOutput, error)
}

// EventsAPI is the subset of the EventBridge client the provisioner uses.
type EventsAPI interface {
	PutRule(ctx context.Context, in *eventbridge.PutRuleInput, opts ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
	PutTargets(ctx context.Context, in *eventbridge.PutTargetsInput, opts ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
}

// SecretsAPI is the subset of the Secrets Manager client the provisioner uses.
type SecretsAPI interface {
	CreateSecret(ctx context.Context, in *secretsmanager.CreateSecretInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, in *secretsmanager.PutSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

// Provisioner upserts workflow infrastructure.
type Provisioner struct {
	sfn     SFNAPI
	events  EventsAPI
	secrets SecretsAPI
	logger  *slog.Logger
}

// New builds a Provisioner from an AWS configuration.
func New(awsCfg aws.Config, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		sfn:     sfn.NewFromConfig(awsCfg),
		events:  eventbridge.NewFromConfig(awsCfg),
		secrets: secretsmanager.NewFromConfig(awsCfg),
		logger:  logger.With("system", "provision"),
	}
}

// NewWithAPIs builds a Provisioner around existing clients.
func NewWithAPIs(machines SFNAPI, events EventsAPI, secrets SecretsAPI, logger *slog.Logger) *Provisioner {
	return &Provisioner{sfn: machines, events: events, secrets: secrets, logger: logger.With("system", "provision")}
}

// EnsureSecret creates the named secret, or rotates its value when it
// already exists.
func (p *Provisioner) EnsureSecret(ctx context.Context, name, value string) error {
	_, err := p.secrets.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		p.logger.Info("secret created", "name", name)
		return nil
	}

	var exists *smtypes.ResourceExistsException
	if !errors.As(err, &exists) {
		return fmt.Errorf("create secret %s: %w", name, err)
	}

	if _, err := p.secrets.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	}); err != nil {
		return fmt.Errorf("rotate secret %s: %w", name, err)
	}
	p.logger.Info("secret rotated", "name", name)
	return nil
}

// EnsureStateMachine creates the state machine, or updates its definition in
// place when it already exists, and returns its ARN.
func (p *Provisioner) EnsureStateMachine(ctx context.Context, name, definition, roleARN string) (string, error) {
	created, err := p.sfn.CreateStateMachine(ctx, &sfn.CreateStateMachineInput{
		Name:       aws.String(name),
		Definition: aws.String(definition),
		RoleArn:    aws.String(roleARN),
	})
	if err == nil {
		p.logger.Info("state machine created", "name", name)
		return aws.ToString(created.StateMachineArn), nil
	}

	var exists *sfntypes.StateMachineAlreadyExists
	if !errors.As(err, &exists) {
		return "", fmt.Errorf("create state machine %s: %w", name, err)
	}

	arn, err := p.findStateMachine(ctx, name)
	if err != nil {
		return "", err
	}
	if _, err := p.sfn.UpdateStateMachine(ctx, &sfn.UpdateStateMachineInput{
		StateMachineArn: aws.String(arn),
		Definition:      aws.String(definition),
		RoleArn:         aws.String(roleARN),
	}); err != nil {
		return "", fmt.Errorf("update state machine %s: %w", name, err)
	}
	p.logger.Info("state machine updated", "name", name)
	return arn, nil
}

func (p *Provisioner) findStateMachine(ctx context.Context, name string) (string, error) {
	var token *string
	for {
		out, err := p.sfn.ListStateMachines(ctx, &sfn.ListStateMachinesInput{NextToken: token})
		if err != nil {
			return "", fmt.Errorf("list state machines: %w", err)
		}
		for _, machine := range out.StateMachines {
			if aws.ToString(machine.Name) == name {
				return aws.ToString(machine.StateMachineArn), nil
			}
		}
		if out.NextToken == nil {
			return "", fmt.Errorf("state machine %s not found after conflict", name)
		}
		token = out.NextToken
	}
}

// EnsureRules upserts the event rules: project creation records start the
// state machine, and model package approvals reach the relay target.
func (p *Provisioner) EnsureRules(ctx context.Context, machineARN, approvalTargetARN, targetRoleARN string) error {
	if err := p.ensureRule(ctx, RuleProjectCreated, projectCreatedPattern, machineARN, targetRoleARN); err != nil {
		return err
	}
	return p.ensureRule(ctx, RuleModelApproval, modelApprovalPattern, approvalTargetARN, targetRoleARN)
}

func (p *Provisioner) ensureRule(ctx context.Context, name, pattern, targetARN, roleARN string) error {
	if _, err := p.events.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:         aws.String(name),
		EventPattern: aws.String(pattern),
		State:        ebtypes.RuleStateEnabled,
	}); err != nil {
		return fmt.Errorf("put rule %s: %w", name, err)
	}

	target := ebtypes.Target{
		Id:  aws.String(name + "-target"),
		Arn: aws.String(targetARN),
	}
	if roleARN != "" {
		target.RoleArn = aws.String(roleARN)
	}
	if _, err := p.events.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule:    aws.String(name),
		Targets: []ebtypes.Target{target},
	}); err != nil {
		return fmt.Errorf("put targets %s: %w", name, err)
	}

	p.logger.Info("rule ensured", "rule", name, "target", targetARN)
	return nil
}

const projectCreatedPattern = `{
  "source": ["aws.datazone"],
  "detail-type": ["AWS API Call via CloudTrail"],
  "detail": {
    "eventSource": ["datazone.amazonaws.com"],
    "eventName": ["CreateProject"]
  }
}`

const modelApprovalPattern = `{
  "source": ["aws.sagemaker"],
  "detail-type": ["SageMaker Model Package State Change"]
}`
