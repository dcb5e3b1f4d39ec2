// Package pipeline assembles SageMaker Pipeline definition documents and
// manages their lifecycle against the SageMaker API. The definition types
// mirror the pipeline definition JSON schema (version 2020-12-01) so a
// document marshals directly into the body accepted by CreatePipeline.
package pipeline

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the pipeline definition schema version.
const SchemaVersion = "2020-12-01"

// Definition is a complete pipeline definition document.
type Definition struct {
	Version    string         `json:"Version"`
	Metadata   map[string]any `json:"Metadata"`
	Parameters []Parameter    `json:"Parameters"`
	Steps      []Step         `json:"Steps"`
}

// Parameter declares a pipeline execution parameter.
type Parameter struct {
	Name         string `json:"Name"`
	Type         string `json:"Type"`
	DefaultValue any    `json:"DefaultValue,omitempty"`
}

// Step is a node in the pipeline graph. Arguments carry the step-type
// specific request shape; property files only apply to processing steps.
type Step struct {
	Name          string         `json:"Name"`
	Type          string         `json:"Type"`
	Arguments     any            `json:"Arguments"`
	PropertyFiles []PropertyFile `json:"PropertyFiles,omitempty"`
}

// PropertyFile declares a step output file whose contents later steps can
// address by JSON path.
type PropertyFile struct {
	PropertyFileName string `json:"PropertyFileName"`
	OutputName       string `json:"OutputName"`
	FilePath         string `json:"FilePath"`
}

// Ref is a runtime reference into the pipeline's property graph, rendered as
// {"Get": "..."}.
type Ref struct {
	Get string `json:"Get"`
}

// ParamRef references a pipeline parameter by name.
func ParamRef(name string) Ref {
	return Ref{Get: "Parameters." + name}
}

// ProcessingOutputRef references a named output S3 URI of a processing step.
func ProcessingOutputRef(step, output string) Ref {
	return Ref{Get: fmt.Sprintf("Steps.%s.ProcessingOutputConfig.Outputs['%s'].S3Output.S3Uri", step, output)}
}

// ModelArtifactsRef references the model artifact S3 URI of a training step.
func ModelArtifactsRef(step string) Ref {
	return Ref{Get: fmt.Sprintf("Steps.%s.ModelArtifacts.S3ModelArtifacts", step)}
}

// PropertyFileRef references a property file declared by a processing step.
func PropertyFileRef(step, file string) Ref {
	return Ref{Get: fmt.Sprintf("Steps.%s.PropertyFiles.%s", step, file)}
}

// ModelNameRef references the model created by a Model step.
func ModelNameRef(step string) Ref {
	return Ref{Get: fmt.Sprintf("Steps.%s.ModelName", step)}
}

// TransformOutputRef references the output S3 path of a Transform step.
func TransformOutputRef(step string) Ref {
	return Ref{Get: fmt.Sprintf("Steps.%s.TransformOutput.S3OutputPath", step)}
}

// JSONGet extracts a value from a property file by JSON path, rendered as
// {"Std:JsonGet": {...}}.
type JSONGet struct {
	PropertyFile Ref    `json:"PropertyFile"`
	Path         string `json:"Path"`
}

// MarshalJSON wraps the extraction in the Std:JsonGet function envelope.
func (j JSONGet) MarshalJSON() ([]byte, error) {
	type inner JSONGet
	return json.Marshal(map[string]inner{"Std:JsonGet": inner(j)})
}

// Condition compares a runtime value against a literal.
type Condition struct {
	Type       string `json:"Type"`
	LeftValue  any    `json:"LeftValue"`
	RightValue any    `json:"RightValue"`
}

// ConditionArguments is the argument shape of a Condition step.
type ConditionArguments struct {
	Conditions []Condition `json:"Conditions"`
	IfSteps    []Step      `json:"IfSteps"`
	ElseSteps  []Step      `json:"ElseSteps"`
}

// ProcessingArguments is the argument shape of a Processing step.
type ProcessingArguments struct {
	ProcessingResources    ProcessingResources     `json:"ProcessingResources"`
	AppSpecification       AppSpecification        `json:"AppSpecification"`
	RoleArn                string                  `json:"RoleArn"`
	ProcessingInputs       []ProcessingInput       `json:"ProcessingInputs,omitempty"`
	ProcessingOutputConfig *ProcessingOutputConfig `json:"ProcessingOutputConfig,omitempty"`
}

// ProcessingResources declares the processing cluster.
type ProcessingResources struct {
	ClusterConfig ClusterConfig `json:"ClusterConfig"`
}

// ClusterConfig sizes a processing cluster. InstanceCount and InstanceType
// may be literals or parameter references.
type ClusterConfig struct {
	InstanceCount  any `json:"InstanceCount"`
	InstanceType   any `json:"InstanceType"`
	VolumeSizeInGB int `json:"VolumeSizeInGB"`
}

// AppSpecification names the container image and invocation for a processing job.
type AppSpecification struct {
	ImageUri            string   `json:"ImageUri"`
	ContainerEntrypoint []string `json:"ContainerEntrypoint,omitempty"`
	ContainerArguments  []any    `json:"ContainerArguments,omitempty"`
}

// ProcessingInput maps an S3 source into the processing container.
type ProcessingInput struct {
	InputName string  `json:"InputName"`
	S3Input   S3Input `json:"S3Input"`
}

// S3Input describes a processing input source.
type S3Input struct {
	S3Uri                  any    `json:"S3Uri"`
	LocalPath              string `json:"LocalPath"`
	S3DataType             string `json:"S3DataType"`
	S3InputMode            string `json:"S3InputMode"`
	S3DataDistributionType string `json:"S3DataDistributionType"`
}

// ProcessingOutputConfig declares the outputs of a processing job.
type ProcessingOutputConfig struct {
	Outputs  []ProcessingOutput `json:"Outputs"`
	KmsKeyId string             `json:"KmsKeyId,omitempty"`
}

// ProcessingOutput maps a container path to an S3 destination.
type ProcessingOutput struct {
	OutputName string   `json:"OutputName"`
	S3Output   S3Output `json:"S3Output"`
}

// S3Output describes a processing output destination.
type S3Output struct {
	S3Uri        any    `json:"S3Uri,omitempty"`
	LocalPath    string `json:"LocalPath"`
	S3UploadMode string `json:"S3UploadMode"`
}

// TrainingArguments is the argument shape of a Training step.
type TrainingArguments struct {
	AlgorithmSpecification AlgorithmSpecification `json:"AlgorithmSpecification"`
	OutputDataConfig       OutputDataConfig       `json:"OutputDataConfig"`
	ResourceConfig         ResourceConfig         `json:"ResourceConfig"`
	RoleArn                string                 `json:"RoleArn"`
	InputDataConfig        []Channel              `json:"InputDataConfig"`
	HyperParameters        map[string]string      `json:"HyperParameters,omitempty"`
	StoppingCondition      StoppingCondition      `json:"StoppingCondition"`
}

// AlgorithmSpecification names the training image.
type AlgorithmSpecification struct {
	TrainingImage     string `json:"TrainingImage"`
	TrainingInputMode string `json:"TrainingInputMode"`
}

// OutputDataConfig declares where model artifacts land.
type OutputDataConfig struct {
	S3OutputPath string `json:"S3OutputPath"`
	KmsKeyId     string `json:"KmsKeyId,omitempty"`
}

// ResourceConfig sizes the training cluster.
type ResourceConfig struct {
	InstanceCount  any `json:"InstanceCount"`
	InstanceType   any `json:"InstanceType"`
	VolumeSizeInGB int `json:"VolumeSizeInGB"`
}

// Channel is a named training input.
type Channel struct {
	ChannelName string     `json:"ChannelName"`
	DataSource  DataSource `json:"DataSource"`
	ContentType string     `json:"ContentType,omitempty"`
}

// DataSource wraps an S3 data source.
type DataSource struct {
	S3DataSource S3DataSource `json:"S3DataSource"`
}

// S3DataSource describes training input data on S3.
type S3DataSource struct {
	S3DataType             string `json:"S3DataType"`
	S3Uri                  any    `json:"S3Uri"`
	S3DataDistributionType string `json:"S3DataDistributionType"`
}

// StoppingCondition bounds training runtime.
type StoppingCondition struct {
	MaxRuntimeInSeconds int `json:"MaxRuntimeInSeconds"`
}

// ModelArguments is the argument shape of a Model step, mirroring
// CreateModel.
type ModelArguments struct {
	ExecutionRoleArn string         `json:"ExecutionRoleArn"`
	PrimaryContainer ModelContainer `json:"PrimaryContainer"`
}

// TransformArguments is the argument shape of a Transform step, mirroring
// CreateTransformJob.
type TransformArguments struct {
	ModelName          any                `json:"ModelName"`
	TransformInput     TransformInput     `json:"TransformInput"`
	TransformOutput    TransformOutput    `json:"TransformOutput"`
	TransformResources TransformResources `json:"TransformResources"`
}

// TransformInput locates the data a batch transform scores.
type TransformInput struct {
	DataSource  TransformDataSource `json:"DataSource"`
	ContentType string              `json:"ContentType,omitempty"`
	SplitType   string              `json:"SplitType,omitempty"`
}

// TransformDataSource wraps the S3 source of a transform input.
type TransformDataSource struct {
	S3DataSource TransformS3DataSource `json:"S3DataSource"`
}

// TransformS3DataSource is the S3 location of a transform input.
type TransformS3DataSource struct {
	S3DataType string `json:"S3DataType"`
	S3Uri      any    `json:"S3Uri"`
}

// TransformOutput declares where a batch transform assembles its results.
type TransformOutput struct {
	S3OutputPath string `json:"S3OutputPath"`
	Accept       string `json:"Accept,omitempty"`
	AssembleWith string `json:"AssembleWith,omitempty"`
	KmsKeyId     string `json:"KmsKeyId,omitempty"`
}

// TransformResources sizes the transform job cluster.
type TransformResources struct {
	InstanceCount int `json:"InstanceCount"`
	InstanceType  any `json:"InstanceType"`
}

// RegisterModelArguments is the argument shape of a RegisterModel step.
type RegisterModelArguments struct {
	ModelPackageGroupName  string                 `json:"ModelPackageGroupName"`
	ModelApprovalStatus    any                    `json:"ModelApprovalStatus"`
	InferenceSpecification InferenceSpecification `json:"InferenceSpecification"`
	ModelMetrics           *ModelMetrics          `json:"ModelMetrics,omitempty"`
}

// InferenceSpecification declares the deployable container and its supported
// interfaces.
type InferenceSpecification struct {
	Containers                              []ModelContainer `json:"Containers"`
	SupportedContentTypes                   []string         `json:"SupportedContentTypes"`
	SupportedResponseMIMETypes              []string         `json:"SupportedResponseMIMETypes"`
	SupportedRealtimeInferenceInstanceTypes []string         `json:"SupportedRealtimeInferenceInstanceTypes"`
	SupportedTransformInstanceTypes         []string         `json:"SupportedTransformInstanceTypes"`
}

// ModelContainer pairs an inference image with model data.
type ModelContainer struct {
	Image        string `json:"Image"`
	ModelDataUrl any    `json:"ModelDataUrl"`
}

// ModelMetrics attaches evaluation statistics to a registered model.
type ModelMetrics struct {
	ModelQuality ModelQuality `json:"ModelQuality"`
}

// ModelQuality wraps the statistics source.
type ModelQuality struct {
	Statistics MetricsSource `json:"Statistics"`
}

// MetricsSource locates a metrics document.
type MetricsSource struct {
	ContentType string `json:"ContentType"`
	S3Uri       any    `json:"S3Uri"`
}

// JSON marshals the definition document.
func (d *Definition) JSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal pipeline definition: %w", err)
	}
	return string(data), nil
}
