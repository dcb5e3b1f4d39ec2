package pipeline

import (
	"fmt"

	"github.com/stonebriar/sagerelay/internal/config"
)

// Step and parameter names for the marketing classification pipeline.
const (
	StepPreprocess = "PreprocessMarketingData"
	StepTrain      = "TrainMarketingModel"
	StepModel      = "CreateMarketingModel"
	StepTransform  = "ScoreTestData"
	StepEvaluate   = "EvaluateMarketingModel"
	StepThreshold  = "CheckAUCThreshold"
	StepRegister   = "RegisterMarketingModel"

	ParamProcessingInstanceType  = "ProcessingInstanceType"
	ParamProcessingInstanceCount = "ProcessingInstanceCount"
	ParamTrainingInstanceType    = "TrainingInstanceType"
	ParamModelApprovalStatus     = "ModelApprovalStatus"
	ParamGlueDatabase            = "GlueDatabase"
	ParamGlueTable               = "GlueTable"
	ParamAUCThreshold            = "AUCThreshold"
	ParamTrackingARN             = "MLflowTrackingARN"

	evaluationReportFile = "MarketingEvaluationReport"
	aucMetricPath        = "classification_metrics.auc.value"

	// Batch transform names its output after the input file.
	predictionsFile = "test_x.csv.out"
)

// xgboostHyperParameters are the fixed training hyperparameters for the
// marketing binary classifier.
func xgboostHyperParameters() map[string]string {
	return map[string]string{
		"max_depth":        "5",
		"eta":              "0.2",
		"gamma":            "4",
		"min_child_weight": "6",
		"subsample":        "0.8",
		"objective":        "binary:logistic",
		"num_round":        "100",
		"eval_metric":      "auc",
	}
}

// QualifiesForRegistration reports whether a model with the given AUC clears
// the registration threshold. The comparison is inclusive: a model exactly at
// the threshold registers.
func QualifiesForRegistration(auc, threshold float64) bool {
	return auc >= threshold
}

// Marketing builds the marketing classification pipeline definition:
// preprocess, train, batch-score the test split, evaluate, then conditionally
// register the model when its test AUC clears the threshold.
func Marketing(cfg *config.PipelineConfig, roleARN string) (*Definition, error) {
	if roleARN == "" {
		return nil, ErrMissingRole
	}
	if cfg.PreprocessImageURI == "" || cfg.TrainingImageURI == "" {
		return nil, fmt.Errorf("%w: preprocess and training image URIs are required", ErrIncompleteConfig)
	}

	base := fmt.Sprintf("s3://%s/%s", cfg.DefaultBucket, cfg.BaseJobPrefix)

	preprocess := Step{
		Name: StepPreprocess,
		Type: "Processing",
		Arguments: ProcessingArguments{
			ProcessingResources: ProcessingResources{
				ClusterConfig: ClusterConfig{
					InstanceCount:  ParamRef(ParamProcessingInstanceCount),
					InstanceType:   ParamRef(ParamProcessingInstanceType),
					VolumeSizeInGB: 30,
				},
			},
			AppSpecification: AppSpecification{
				ImageUri:            cfg.PreprocessImageURI,
				ContainerEntrypoint: []string{"preprocess"},
				ContainerArguments: []any{
					"-database", ParamRef(ParamGlueDatabase),
					"-table", ParamRef(ParamGlueTable),
					"-output", "/opt/ml/processing",
				},
			},
			RoleArn: roleARN,
			ProcessingOutputConfig: &ProcessingOutputConfig{
				Outputs: []ProcessingOutput{
					processingOutput("train", base),
					processingOutput("validation", base),
					processingOutput("test", base),
					processingOutput("test_x", base),
				},
				KmsKeyId: cfg.KMSKeyID,
			},
		},
	}

	train := Step{
		Name: StepTrain,
		Type: "Training",
		Arguments: TrainingArguments{
			AlgorithmSpecification: AlgorithmSpecification{
				TrainingImage:     cfg.TrainingImageURI,
				TrainingInputMode: "File",
			},
			OutputDataConfig: OutputDataConfig{
				S3OutputPath: base + "/model",
				KmsKeyId:     cfg.KMSKeyID,
			},
			ResourceConfig: ResourceConfig{
				InstanceCount:  1,
				InstanceType:   ParamRef(ParamTrainingInstanceType),
				VolumeSizeInGB: 30,
			},
			RoleArn: roleARN,
			InputDataConfig: []Channel{
				trainingChannel("train", ProcessingOutputRef(StepPreprocess, "train")),
				trainingChannel("validation", ProcessingOutputRef(StepPreprocess, "validation")),
			},
			HyperParameters:   xgboostHyperParameters(),
			StoppingCondition: StoppingCondition{MaxRuntimeInSeconds: 3600},
		},
	}

	model := Step{
		Name: StepModel,
		Type: "Model",
		Arguments: ModelArguments{
			ExecutionRoleArn: roleARN,
			PrimaryContainer: ModelContainer{
				Image:        cfg.TrainingImageURI,
				ModelDataUrl: ModelArtifactsRef(StepTrain),
			},
		},
	}

	// Score the label-free test features so the evaluate step has predicted
	// probabilities to compare against the held-out labels.
	transform := Step{
		Name: StepTransform,
		Type: "Transform",
		Arguments: TransformArguments{
			ModelName: ModelNameRef(StepModel),
			TransformInput: TransformInput{
				DataSource: TransformDataSource{
					S3DataSource: TransformS3DataSource{
						S3DataType: "S3Prefix",
						S3Uri:      ProcessingOutputRef(StepPreprocess, "test_x"),
					},
				},
				ContentType: "text/csv",
				SplitType:   "Line",
			},
			TransformOutput: TransformOutput{
				S3OutputPath: base + "/predictions",
				Accept:       "text/csv",
				AssembleWith: "Line",
				KmsKeyId:     cfg.KMSKeyID,
			},
			TransformResources: TransformResources{
				InstanceCount: 1,
				InstanceType:  "ml.m5.xlarge",
			},
		},
	}

	evaluate := Step{
		Name: StepEvaluate,
		Type: "Processing",
		Arguments: ProcessingArguments{
			ProcessingResources: ProcessingResources{
				ClusterConfig: ClusterConfig{
					InstanceCount:  1,
					InstanceType:   ParamRef(ParamProcessingInstanceType),
					VolumeSizeInGB: 30,
				},
			},
			AppSpecification: AppSpecification{
				ImageUri:            cfg.TrainingImageURI,
				ContainerEntrypoint: []string{"evaluate"},
				ContainerArguments: []any{
					"-test", "/opt/ml/processing/test/test.csv",
					"-predictions", "/opt/ml/processing/predictions/" + predictionsFile,
					"-output", "/opt/ml/processing/evaluation",
					"-auc-threshold", ParamRef(ParamAUCThreshold),
					"-tracking-arn", ParamRef(ParamTrackingARN),
				},
			},
			RoleArn: roleARN,
			ProcessingInputs: []ProcessingInput{
				{
					InputName: "predictions",
					S3Input: S3Input{
						S3Uri:                  TransformOutputRef(StepTransform),
						LocalPath:              "/opt/ml/processing/predictions",
						S3DataType:             "S3Prefix",
						S3InputMode:            "File",
						S3DataDistributionType: "FullyReplicated",
					},
				},
				{
					InputName: "test",
					S3Input: S3Input{
						S3Uri:                  ProcessingOutputRef(StepPreprocess, "test"),
						LocalPath:              "/opt/ml/processing/test",
						S3DataType:             "S3Prefix",
						S3InputMode:            "File",
						S3DataDistributionType: "FullyReplicated",
					},
				},
			},
			ProcessingOutputConfig: &ProcessingOutputConfig{
				Outputs:  []ProcessingOutput{processingOutput("evaluation", base)},
				KmsKeyId: cfg.KMSKeyID,
			},
		},
		PropertyFiles: []PropertyFile{
			{
				PropertyFileName: evaluationReportFile,
				OutputName:       "evaluation",
				FilePath:         "evaluation.json",
			},
		},
	}

	register := Step{
		Name: StepRegister,
		Type: "RegisterModel",
		Arguments: RegisterModelArguments{
			ModelPackageGroupName: cfg.ModelPackageGroup,
			ModelApprovalStatus:   ParamRef(ParamModelApprovalStatus),
			InferenceSpecification: InferenceSpecification{
				Containers: []ModelContainer{
					{
						Image:        cfg.TrainingImageURI,
						ModelDataUrl: ModelArtifactsRef(StepTrain),
					},
				},
				SupportedContentTypes:                   []string{"text/csv"},
				SupportedResponseMIMETypes:              []string{"text/csv"},
				SupportedRealtimeInferenceInstanceTypes: []string{"ml.m5.xlarge"},
				SupportedTransformInstanceTypes:         []string{"ml.m5.xlarge"},
			},
			ModelMetrics: &ModelMetrics{
				ModelQuality: ModelQuality{
					Statistics: MetricsSource{
						ContentType: "application/json",
						S3Uri:       ProcessingOutputRef(StepEvaluate, "evaluation"),
					},
				},
			},
		},
	}

	threshold := Step{
		Name: StepThreshold,
		Type: "Condition",
		Arguments: ConditionArguments{
			Conditions: []Condition{
				{
					Type: "GreaterThanOrEqualTo",
					LeftValue: JSONGet{
						PropertyFile: PropertyFileRef(StepEvaluate, evaluationReportFile),
						Path:         aucMetricPath,
					},
					RightValue: ParamRef(ParamAUCThreshold),
				},
			},
			IfSteps:   []Step{register},
			ElseSteps: []Step{},
		},
	}

	return &Definition{
		Version:  SchemaVersion,
		Metadata: map[string]any{},
		Parameters: []Parameter{
			{Name: ParamProcessingInstanceType, Type: "String", DefaultValue: cfg.ProcessingInstanceType},
			{Name: ParamProcessingInstanceCount, Type: "Integer", DefaultValue: cfg.ProcessingInstanceCount},
			{Name: ParamTrainingInstanceType, Type: "String", DefaultValue: cfg.TrainingInstanceType},
			{Name: ParamModelApprovalStatus, Type: "String", DefaultValue: cfg.ModelApprovalStatus},
			{Name: ParamGlueDatabase, Type: "String", DefaultValue: cfg.GlueDatabase},
			{Name: ParamGlueTable, Type: "String", DefaultValue: cfg.GlueTable},
			{Name: ParamAUCThreshold, Type: "Float", DefaultValue: cfg.AUCThreshold},
			{Name: ParamTrackingARN, Type: "String", DefaultValue: cfg.TrackingARN},
		},
		Steps: []Step{preprocess, train, model, transform, evaluate, threshold},
	}, nil
}

func processingOutput(name, base string) ProcessingOutput {
	return ProcessingOutput{
		OutputName: name,
		S3Output: S3Output{
			S3Uri:        fmt.Sprintf("%s/%s", base, name),
			LocalPath:    "/opt/ml/processing/" + name,
			S3UploadMode: "EndOfJob",
		},
	}
}

func trainingChannel(name string, uri any) Channel {
	return Channel{
		ChannelName: name,
		ContentType: "text/csv",
		DataSource: DataSource{
			S3DataSource: S3DataSource{
				S3DataType:             "S3Prefix",
				S3Uri:                  uri,
				S3DataDistributionType: "FullyReplicated",
			},
		},
	}
}
