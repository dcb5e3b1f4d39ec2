// Command evaluate scores model predictions against the held-out test split
// and writes the evaluation report. Metrics are optionally mirrored to an
// MLflow tracking server; tracking failures never fail the evaluation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stonebriar/sagerelay/internal/dataset"
	"github.com/stonebriar/sagerelay/internal/evaluation"
	"github.com/stonebriar/sagerelay/internal/pipeline"
)

type options struct {
	testPath        string
	predictionsPath string
	output          string
	aucThreshold    float64
	trackingURI     string
	experiment      string
}

func main() {
	var opts options
	flag.StringVar(&opts.testPath, "test", "", "headerless test split CSV, label in the first column")
	flag.StringVar(&opts.predictionsPath, "predictions", "", "predicted probabilities, one per line")
	flag.StringVar(&opts.output, "output", ".", "directory for evaluation.json")
	flag.Float64Var(&opts.aucThreshold, "auc-threshold", 0.7, "AUC the model must reach to register")
	flag.StringVar(&opts.trackingURI, "tracking-arn", "", "MLflow tracking server URI or ARN (optional)")
	flag.StringVar(&opts.experiment, "experiment", "marketing-classification", "MLflow experiment name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), opts, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	if opts.testPath == "" || opts.predictionsPath == "" {
		return fmt.Errorf("-test and -predictions are required")
	}

	labels, err := readLabels(opts.testPath)
	if err != nil {
		return fmt.Errorf("read test labels: %w", err)
	}
	probabilities, err := readProbabilities(opts.predictionsPath)
	if err != nil {
		return fmt.Errorf("read predictions: %w", err)
	}

	metrics, err := evaluation.Compute(labels, probabilities)
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}
	logger.Info("metrics computed",
		"auc", metrics.AUC,
		"accuracy", metrics.Accuracy,
		"precision", metrics.Precision,
		"recall", metrics.Recall,
		"f1", metrics.F1,
	)
	if pipeline.QualifiesForRegistration(metrics.AUC, opts.aucThreshold) {
		logger.Info("model clears the registration threshold", "threshold", opts.aucThreshold)
	} else {
		logger.Warn("model below the registration threshold", "threshold", opts.aucThreshold)
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return err
	}
	path := filepath.Join(opts.output, "evaluation.json")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	report := evaluation.NewReport(metrics)
	if err := report.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("report written", "path", path)

	if tracker := evaluation.NewTracker(opts.trackingURI, opts.experiment, logger); tracker != nil {
		if err := tracker.LogMetrics(ctx, metrics); err != nil {
			logger.Warn("metric tracking failed", "error", err)
		}
	}
	return nil
}

// readLabels extracts the label column (the first) from the headerless test
// split.
func readLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := dataset.ReadHeadless(f)
	if err != nil {
		return nil, err
	}

	values, err := t.FloatColumn("label")
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(values))
	for i, v := range values {
		labels[i] = int(v)
	}
	return labels, nil
}

func readProbabilities(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var probabilities []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(probabilities)+1, err)
		}
		probabilities = append(probabilities, p)
	}
	return probabilities, scanner.Err()
}
