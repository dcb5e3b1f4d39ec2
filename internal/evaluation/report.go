package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report is the evaluation document written for the pipeline's registration
// condition. The nested shape matches the property file path
// classification_metrics.auc.value used by the condition step.
type Report struct {
	ClassificationMetrics map[string]MetricValue `json:"classification_metrics"`
}

// MetricValue wraps a single metric value.
type MetricValue struct {
	Value float64 `json:"value"`
}

// NewReport builds a Report from computed metrics.
func NewReport(m Metrics) Report {
	return Report{
		ClassificationMetrics: map[string]MetricValue{
			"auc":       {Value: m.AUC},
			"accuracy":  {Value: m.Accuracy},
			"precision": {Value: m.Precision},
			"recall":    {Value: m.Recall},
			"f1":        {Value: m.F1},
		},
	}
}

// Write serializes the report as indented JSON.
func (r Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write evaluation report: %w", err)
	}
	return nil
}

// ReadReport parses an evaluation report.
func ReadReport(r io.Reader) (Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return Report{}, fmt.Errorf("parse evaluation report: %w", err)
	}
	if report.ClassificationMetrics == nil {
		return Report{}, ErrEmptyReport
	}
	return report, nil
}

// AUC returns the report's AUC value.
func (r Report) AUC() (float64, error) {
	v, ok := r.ClassificationMetrics["auc"]
	if !ok {
		return 0, fmt.Errorf("%w: auc", ErrMissingMetric)
	}
	return v.Value, nil
}
