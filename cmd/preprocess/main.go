// Command preprocess reads the raw marketing dataset, derives indicator
// features, one-hot encodes the categoricals, and writes shuffled
// train/validation/test splits as headerless CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/stonebriar/sagerelay/internal/catalog"
	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/dataset"
	"github.com/stonebriar/sagerelay/internal/features"
	"github.com/stonebriar/sagerelay/pkg/storage"
)

type options struct {
	input      string
	database   string
	table      string
	output     string
	seed       int64
	trainRatio float64
	valRatio   float64
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "input CSV: local path or s3:// URI")
	flag.StringVar(&opts.database, "database", "", "Glue database holding the dataset")
	flag.StringVar(&opts.table, "table", "", "Glue table holding the dataset")
	flag.StringVar(&opts.output, "output", ".", "directory for the split CSV files")
	flag.Int64Var(&opts.seed, "seed", features.DefaultSeed, "shuffle seed")
	flag.Float64Var(&opts.trainRatio, "train-ratio", 0.7, "fraction of rows for training")
	flag.Float64Var(&opts.valRatio, "validation-ratio", 0.2, "fraction of rows for validation")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), opts, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	reader, err := open(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	t, err := dataset.ReadCSV(reader)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	logger.Info("dataset loaded", "rows", t.Len(), "columns", len(t.Columns()))

	if err := features.Derive(t); err != nil {
		return fmt.Errorf("derive features: %w", err)
	}
	features.DropNonPredictive(t)

	encoded, err := features.Encode(t)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	prepared, err := features.PrepareTarget(encoded)
	if err != nil {
		return fmt.Errorf("prepare target: %w", err)
	}

	train, validation, test, err := features.Split(prepared, opts.seed, opts.trainRatio, opts.valRatio)
	if err != nil {
		return fmt.Errorf("split dataset: %w", err)
	}
	logger.Info("dataset split",
		"train", train.Len(),
		"validation", validation.Len(),
		"test", test.Len(),
	)

	splits := map[string]*dataset.Table{
		"train":      train,
		"validation": validation,
		"test":       test,
	}
	for name, split := range splits {
		dir := filepath.Join(opts.output, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, name+".csv")
		if err := writeSplit(path, split); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logger.Info("split written", "name", name, "path", path, "rows", split.Len())
	}

	// Batch transform scores the test rows without their labels; write them
	// as a separate split.
	testFeatures, err := test.Select(featureColumns(test))
	if err != nil {
		return fmt.Errorf("select test features: %w", err)
	}
	dir := filepath.Join(opts.output, "test_x")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "test_x.csv")
	if err := writeSplit(path, testFeatures); err != nil {
		return fmt.Errorf("write test_x: %w", err)
	}
	logger.Info("split written", "name", "test_x", "path", path, "rows", testFeatures.Len())
	return nil
}

func featureColumns(t *dataset.Table) []string {
	cols := make([]string, 0, len(t.Columns()))
	for _, name := range t.Columns() {
		if name != features.TargetColumn {
			cols = append(cols, name)
		}
	}
	return cols
}

// open resolves the dataset source: a local file, an s3:// object, or a Glue
// table whose location is listed for the first CSV object.
func open(ctx context.Context, opts options, logger *slog.Logger) (io.ReadCloser, error) {
	switch {
	case opts.input != "" && !strings.HasPrefix(opts.input, "s3://"):
		return os.Open(opts.input)
	case opts.input != "":
		return openObject(ctx, opts.input, logger)
	case opts.database != "" && opts.table != "":
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, err
		}
		location, err := catalog.New(awsCfg, logger).TableLocation(ctx, opts.database, opts.table)
		if err != nil {
			return nil, err
		}
		return openPrefix(ctx, location, logger)
	default:
		return nil, fmt.Errorf("either -input or -database and -table are required")
	}
}

func openObject(ctx context.Context, uri string, logger *slog.Logger) (io.ReadCloser, error) {
	bucket, key, err := storage.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, bucket, logger)
	if err != nil {
		return nil, err
	}
	return store.Download(ctx, key)
}

// openPrefix downloads the first CSV object under a table location.
func openPrefix(ctx context.Context, uri string, logger *slog.Logger) (io.ReadCloser, error) {
	bucket, prefix, err := storage.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, bucket, logger)
	if err != nil {
		return nil, err
	}

	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if strings.HasSuffix(key, ".csv") {
			return store.Download(ctx, key)
		}
	}
	return nil, fmt.Errorf("no CSV objects under %s", uri)
}

func newStore(ctx context.Context, bucket string, logger *slog.Logger) (storage.System, error) {
	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, err
	}
	return storage.New(&storage.Config{Bucket: bucket}, awsCfg, logger)
}

func loadAWS(ctx context.Context) (aws.Config, error) {
	if region := os.Getenv(config.EnvRelayRegion); region != "" {
		return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx)
}

func writeSplit(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := t.WriteHeadless(f); err != nil {
		return err
	}
	return f.Close()
}
