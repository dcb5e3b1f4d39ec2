package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// API is the subset of the SageMaker client the manager depends on.
type API interface {
	CreatePipeline(ctx context.Context, in *sagemaker.CreatePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.CreatePipelineOutput, error)
	UpdatePipeline(ctx context.Context, in *sagemaker.UpdatePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.UpdatePipelineOutput, error)
	AddTags(ctx context.Context, in *sagemaker.AddTagsInput, opts ...func(*sagemaker.Options)) (*sagemaker.AddTagsOutput, error)
	DescribePipeline(ctx context.Context, in *sagemaker.DescribePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribePipelineOutput, error)
	StartPipelineExecution(ctx context.Context, in *sagemaker.StartPipelineExecutionInput, opts ...func(*sagemaker.Options)) (*sagemaker.StartPipelineExecutionOutput, error)
}

// Manager creates, updates, and starts pipelines against SageMaker.
type Manager struct {
	api    API
	logger *slog.Logger
}

// NewManager builds a Manager from an AWS configuration.
func NewManager(awsCfg aws.Config, logger *slog.Logger) *Manager {
	return &Manager{
		api:    sagemaker.NewFromConfig(awsCfg),
		logger: logger.With("system", "pipeline"),
	}
}

// NewManagerWithAPI builds a Manager around an existing client.
func NewManagerWithAPI(api API, logger *slog.Logger) *Manager {
	return &Manager{api: api, logger: logger.With("system", "pipeline")}
}

// Upsert creates the pipeline, or updates it in place when a pipeline with
// the same name already exists. Tags are applied in both cases and returns
// the pipeline ARN.
func (m *Manager) Upsert(ctx context.Context, name string, def *Definition, roleARN string, tags map[string]string) (string, error) {
	body, err := def.JSON()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpsertFailed, err)
	}

	created, err := m.api.CreatePipeline(ctx, &sagemaker.CreatePipelineInput{
		PipelineName:       aws.String(name),
		PipelineDefinition: aws.String(body),
		RoleArn:            aws.String(roleARN),
		Tags:               awsTags(tags),
	})
	if err == nil {
		m.logger.Info("pipeline created", "pipeline", name)
		return aws.ToString(created.PipelineArn), nil
	}
	if !isAlreadyExists(err) {
		return "", fmt.Errorf("%w: create %s: %w", ErrUpsertFailed, name, err)
	}

	updated, err := m.api.UpdatePipeline(ctx, &sagemaker.UpdatePipelineInput{
		PipelineName:       aws.String(name),
		PipelineDefinition: aws.String(body),
		RoleArn:            aws.String(roleARN),
	})
	if err != nil {
		return "", fmt.Errorf("%w: update %s: %w", ErrUpsertFailed, name, err)
	}
	arn := aws.ToString(updated.PipelineArn)

	if len(tags) > 0 {
		if _, err := m.api.AddTags(ctx, &sagemaker.AddTagsInput{
			ResourceArn: aws.String(arn),
			Tags:        awsTags(tags),
		}); err != nil {
			return "", fmt.Errorf("%w: tag %s: %w", ErrUpsertFailed, name, err)
		}
	}

	m.logger.Info("pipeline updated", "pipeline", name)
	return arn, nil
}

// Start launches a pipeline execution with the given parameter overrides and
// returns the execution ARN.
func (m *Manager) Start(ctx context.Context, name string, parameters map[string]string) (string, error) {
	in := &sagemaker.StartPipelineExecutionInput{
		PipelineName:       aws.String(name),
		ClientRequestToken: aws.String(uuid.NewString()),
	}
	for key, value := range parameters {
		in.PipelineParameters = append(in.PipelineParameters, types.Parameter{
			Name:  aws.String(key),
			Value: aws.String(value),
		})
	}

	out, err := m.api.StartPipelineExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrStartFailed, name, err)
	}

	arn := aws.ToString(out.PipelineExecutionArn)
	m.logger.Info("pipeline execution started", "pipeline", name, "execution", arn)
	return arn, nil
}

func awsTags(tags map[string]string) []types.Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]types.Tag, 0, len(tags))
	for key, value := range tags {
		out = append(out, types.Tag{Key: aws.String(key), Value: aws.String(value)})
	}
	return out
}

func isAlreadyExists(err error) bool {
	var inUse *types.ResourceInUse
	if errors.As(err, &inUse) {
		return true
	}
	var api smithy.APIError
	if errors.As(err, &api) {
		return api.ErrorCode() == "ValidationException" &&
			strings.Contains(api.ErrorMessage(), "already exist")
	}
	return false
}
