package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/stonebriar/sagerelay/internal/pipeline"
)

type fakeSageMaker struct {
	createErr     error
	created       int
	updated       int
	tagged        int
	startedParams map[string]string
}

func (f *fakeSageMaker) CreatePipeline(ctx context.Context, in *sagemaker.CreatePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.CreatePipelineOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &sagemaker.CreatePipelineOutput{PipelineArn: aws.String("arn:created")}, nil
}

func (f *fakeSageMaker) UpdatePipeline(ctx context.Context, in *sagemaker.UpdatePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.UpdatePipelineOutput, error) {
	f.updated++
	return &sagemaker.UpdatePipelineOutput{PipelineArn: aws.String("arn:updated")}, nil
}

func (f *fakeSageMaker) AddTags(ctx context.Context, in *sagemaker.AddTagsInput, opts ...func(*sagemaker.Options)) (*sagemaker.AddTagsOutput, error) {
	f.tagged += len(in.Tags)
	return &sagemaker.AddTagsOutput{}, nil
}

func (f *fakeSageMaker) DescribePipeline(ctx context.Context, in *sagemaker.DescribePipelineInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribePipelineOutput, error) {
	return &sagemaker.DescribePipelineOutput{}, nil
}

func (f *fakeSageMaker) StartPipelineExecution(ctx context.Context, in *sagemaker.StartPipelineExecutionInput, opts ...func(*sagemaker.Options)) (*sagemaker.StartPipelineExecutionOutput, error) {
	f.startedParams = map[string]string{}
	for _, p := range in.PipelineParameters {
		f.startedParams[aws.ToString(p.Name)] = aws.ToString(p.Value)
	}
	if aws.ToString(in.ClientRequestToken) == "" {
		return nil, errors.New("missing client request token")
	}
	return &sagemaker.StartPipelineExecutionOutput{PipelineExecutionArn: aws.String("arn:execution")}, nil
}

func testManager(api pipeline.API) *pipeline.Manager {
	return pipeline.NewManagerWithAPI(api, slog.New(slog.DiscardHandler))
}

func testDefinition(t *testing.T) *pipeline.Definition {
	t.Helper()
	def, err := pipeline.Marketing(pipelineConfig(), roleARN)
	if err != nil {
		t.Fatalf("Marketing error: %v", err)
	}
	return def
}

func TestUpsert(t *testing.T) {
	t.Run("creates when absent", func(t *testing.T) {
		fake := &fakeSageMaker{}
		arn, err := testManager(fake).Upsert(context.Background(), "p", testDefinition(t), roleARN, map[string]string{"team": "mlops"})
		if err != nil {
			t.Fatalf("Upsert error: %v", err)
		}
		if arn != "arn:created" {
			t.Errorf("arn = %s, want arn:created", arn)
		}
		if fake.created != 1 || fake.updated != 0 {
			t.Errorf("created=%d updated=%d, want 1/0", fake.created, fake.updated)
		}
	})

	t.Run("updates and retags on conflict", func(t *testing.T) {
		fake := &fakeSageMaker{createErr: &types.ResourceInUse{Message: aws.String("pipeline exists")}}
		arn, err := testManager(fake).Upsert(context.Background(), "p", testDefinition(t), roleARN, map[string]string{"team": "mlops"})
		if err != nil {
			t.Fatalf("Upsert error: %v", err)
		}
		if arn != "arn:updated" {
			t.Errorf("arn = %s, want arn:updated", arn)
		}
		if fake.updated != 1 || fake.tagged != 1 {
			t.Errorf("updated=%d tagged=%d, want 1/1", fake.updated, fake.tagged)
		}
	})

	t.Run("propagates other failures", func(t *testing.T) {
		fake := &fakeSageMaker{createErr: errors.New("throttled")}
		_, err := testManager(fake).Upsert(context.Background(), "p", testDefinition(t), roleARN, nil)
		if !errors.Is(err, pipeline.ErrUpsertFailed) {
			t.Errorf("err = %v, want ErrUpsertFailed", err)
		}
	})
}

func TestStart(t *testing.T) {
	fake := &fakeSageMaker{}
	arn, err := testManager(fake).Start(context.Background(), "p", map[string]string{
		pipeline.ParamAUCThreshold: "0.75",
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if arn != "arn:execution" {
		t.Errorf("arn = %s, want arn:execution", arn)
	}
	if fake.startedParams[pipeline.ParamAUCThreshold] != "0.75" {
		t.Errorf("parameters = %v, want AUCThreshold override", fake.startedParams)
	}
}
