package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvPipelineName         = "SAGERELAY_PIPELINE_NAME"
	EnvPipelineBucket       = "SAGERELAY_PIPELINE_BUCKET"
	EnvPipelinePackageGroup = "SAGERELAY_PIPELINE_PACKAGE_GROUP"
	EnvPipelineGlueDatabase = "SAGERELAY_PIPELINE_GLUE_DATABASE"
	EnvPipelineGlueTable    = "SAGERELAY_PIPELINE_GLUE_TABLE"
	EnvPipelineTrackingARN  = "SAGERELAY_PIPELINE_TRACKING_ARN"
	EnvPipelineKMSKeyID     = "SAGERELAY_PIPELINE_KMS_KEY_ID"
	EnvPipelineAUCThreshold = "SAGERELAY_PIPELINE_AUC_THRESHOLD"
)

// PipelineConfig parameterizes the marketing classification pipeline
// definition and its upsert/start operations.
type PipelineConfig struct {
	Name                string  `toml:"name"`
	ModelPackageGroup   string  `toml:"model_package_group"`
	BaseJobPrefix       string  `toml:"base_job_prefix"`
	DefaultBucket       string  `toml:"default_bucket"`
	KMSKeyID            string  `toml:"kms_key_id"`
	GlueDatabase        string  `toml:"glue_database"`
	GlueTable           string  `toml:"glue_table"`
	AUCThreshold        float64 `toml:"auc_threshold"`
	ModelApprovalStatus string  `toml:"model_approval_status"`
	TrackingARN         string  `toml:"tracking_arn"`

	ProcessingInstanceType  string `toml:"processing_instance_type"`
	ProcessingInstanceCount int    `toml:"processing_instance_count"`
	TrainingInstanceType    string `toml:"training_instance_type"`
	PreprocessImageURI      string `toml:"preprocess_image_uri"`
	TrainingImageURI        string `toml:"training_image_uri"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.ModelPackageGroup != "" {
		c.ModelPackageGroup = overlay.ModelPackageGroup
	}
	if overlay.BaseJobPrefix != "" {
		c.BaseJobPrefix = overlay.BaseJobPrefix
	}
	if overlay.DefaultBucket != "" {
		c.DefaultBucket = overlay.DefaultBucket
	}
	if overlay.KMSKeyID != "" {
		c.KMSKeyID = overlay.KMSKeyID
	}
	if overlay.GlueDatabase != "" {
		c.GlueDatabase = overlay.GlueDatabase
	}
	if overlay.GlueTable != "" {
		c.GlueTable = overlay.GlueTable
	}
	if overlay.AUCThreshold != 0 {
		c.AUCThreshold = overlay.AUCThreshold
	}
	if overlay.ModelApprovalStatus != "" {
		c.ModelApprovalStatus = overlay.ModelApprovalStatus
	}
	if overlay.TrackingARN != "" {
		c.TrackingARN = overlay.TrackingARN
	}
	if overlay.ProcessingInstanceType != "" {
		c.ProcessingInstanceType = overlay.ProcessingInstanceType
	}
	if overlay.ProcessingInstanceCount != 0 {
		c.ProcessingInstanceCount = overlay.ProcessingInstanceCount
	}
	if overlay.TrainingInstanceType != "" {
		c.TrainingInstanceType = overlay.TrainingInstanceType
	}
	if overlay.PreprocessImageURI != "" {
		c.PreprocessImageURI = overlay.PreprocessImageURI
	}
	if overlay.TrainingImageURI != "" {
		c.TrainingImageURI = overlay.TrainingImageURI
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Name == "" {
		c.Name = "MarketingClassificationPipeline"
	}
	if c.ModelPackageGroup == "" {
		c.ModelPackageGroup = "MarketingClassificationPackageGroup"
	}
	if c.BaseJobPrefix == "" {
		c.BaseJobPrefix = "MarketingClassification"
	}
	if c.AUCThreshold == 0 {
		c.AUCThreshold = 0.7
	}
	if c.ModelApprovalStatus == "" {
		c.ModelApprovalStatus = "PendingManualApproval"
	}
	if c.ProcessingInstanceType == "" {
		c.ProcessingInstanceType = "ml.m5.xlarge"
	}
	if c.ProcessingInstanceCount == 0 {
		c.ProcessingInstanceCount = 1
	}
	if c.TrainingInstanceType == "" {
		c.TrainingInstanceType = "ml.m5.xlarge"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineName); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvPipelineBucket); v != "" {
		c.DefaultBucket = v
	}
	if v := os.Getenv(EnvPipelinePackageGroup); v != "" {
		c.ModelPackageGroup = v
	}
	if v := os.Getenv(EnvPipelineGlueDatabase); v != "" {
		c.GlueDatabase = v
	}
	if v := os.Getenv(EnvPipelineGlueTable); v != "" {
		c.GlueTable = v
	}
	if v := os.Getenv(EnvPipelineTrackingARN); v != "" {
		c.TrackingARN = v
	}
	if v := os.Getenv(EnvPipelineKMSKeyID); v != "" {
		c.KMSKeyID = v
	}
	if v := os.Getenv(EnvPipelineAUCThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.AUCThreshold = f
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.AUCThreshold <= 0 || c.AUCThreshold >= 1 {
		return fmt.Errorf("auc_threshold must be in (0, 1): %v", c.AUCThreshold)
	}
	if c.ProcessingInstanceCount < 1 {
		return fmt.Errorf("processing_instance_count must be positive: %d", c.ProcessingInstanceCount)
	}
	return nil
}
