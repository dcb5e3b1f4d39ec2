// Command pipeline upserts a SageMaker pipeline definition and optionally
// starts an execution. The pipeline module is selected by name from the
// registry; an unknown name fails before any API call.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/internal/pipeline"
	"github.com/stonebriar/sagerelay/pkg/formatting"
)

type options struct {
	moduleName   string
	roleARN      string
	tags         string
	kwargs       string
	pipelineName string
	logLevel     string
	trackingARN  string
	start        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.moduleName, "module-name", pipeline.ModuleMarketing, "registered pipeline module to build")
	flag.StringVar(&opts.roleARN, "role-arn", "", "execution role for the pipeline (required)")
	flag.StringVar(&opts.tags, "tags", "", `resource tags as JSON, e.g. {"team":"mlops"}`)
	flag.StringVar(&opts.kwargs, "kwargs", "", "pipeline configuration overrides as JSON")
	flag.StringVar(&opts.pipelineName, "pipeline-name", "", "override the configured pipeline name")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&opts.trackingARN, "mlflow-tracking-arn", "", "MLflow tracking server ARN forwarded to the pipeline")
	flag.BoolVar(&opts.start, "start", false, "start an execution after the upsert")
	flag.Parse()

	logger := newLogger(opts.logLevel)

	if err := run(context.Background(), opts, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.roleARN == "" {
		return fmt.Errorf("-role-arn is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if opts.pipelineName != "" {
		cfg.Pipeline.Name = opts.pipelineName
	}
	if opts.trackingARN != "" {
		cfg.Pipeline.TrackingARN = opts.trackingARN
	}
	if opts.kwargs != "" {
		if err := applyKwargs(&cfg.Pipeline, opts.kwargs); err != nil {
			return err
		}
	}

	var tags map[string]string
	if opts.tags != "" {
		tags, err = formatting.Parse[map[string]string](opts.tags)
		if err != nil {
			return fmt.Errorf("parse -tags: %w", err)
		}
	}

	def, err := pipeline.Build(opts.moduleName, &cfg.Pipeline, opts.roleARN)
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return err
	}

	mgr := pipeline.NewManager(infra.AWS, logger)

	arn, err := mgr.Upsert(ctx, cfg.Pipeline.Name, def, opts.roleARN, tags)
	if err != nil {
		return err
	}
	logger.Info("pipeline upserted", "pipeline", cfg.Pipeline.Name, "arn", arn)

	if opts.start {
		execution, err := mgr.Start(ctx, cfg.Pipeline.Name, nil)
		if err != nil {
			return err
		}
		logger.Info("execution started", "arn", execution)
	}
	return nil
}

// applyKwargs overlays JSON overrides onto the pipeline configuration. Keys
// follow the configuration file naming.
func applyKwargs(cfg *config.PipelineConfig, raw string) error {
	kwargs, err := formatting.Parse[map[string]any](raw)
	if err != nil {
		return fmt.Errorf("parse -kwargs: %w", err)
	}

	for key, value := range kwargs {
		switch key {
		case "name":
			cfg.Name, err = asString(key, value)
		case "model_package_group":
			cfg.ModelPackageGroup, err = asString(key, value)
		case "base_job_prefix":
			cfg.BaseJobPrefix, err = asString(key, value)
		case "default_bucket":
			cfg.DefaultBucket, err = asString(key, value)
		case "kms_key_id":
			cfg.KMSKeyID, err = asString(key, value)
		case "glue_database":
			cfg.GlueDatabase, err = asString(key, value)
		case "glue_table":
			cfg.GlueTable, err = asString(key, value)
		case "auc_threshold":
			cfg.AUCThreshold, err = asFloat(key, value)
		case "model_approval_status":
			cfg.ModelApprovalStatus, err = asString(key, value)
		case "tracking_arn":
			cfg.TrackingARN, err = asString(key, value)
		case "processing_instance_type":
			cfg.ProcessingInstanceType, err = asString(key, value)
		case "processing_instance_count":
			var count float64
			count, err = asFloat(key, value)
			cfg.ProcessingInstanceCount = int(count)
		case "training_instance_type":
			cfg.TrainingInstanceType, err = asString(key, value)
		case "preprocess_image_uri":
			cfg.PreprocessImageURI, err = asString(key, value)
		case "training_image_uri":
			cfg.TrainingImageURI, err = asString(key, value)
		default:
			return fmt.Errorf("unknown kwarg %q", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func asString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("kwarg %q must be a string", key)
	}
	return s, nil
}

func asFloat(key string, value any) (float64, error) {
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("kwarg %q must be a number", key)
	}
	return f, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
