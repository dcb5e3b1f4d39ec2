package evaluation_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stonebriar/sagerelay/internal/evaluation"
)

func TestReport(t *testing.T) {
	metrics := evaluation.Metrics{
		AUC:       0.82,
		Accuracy:  0.91,
		Precision: 0.75,
		Recall:    0.6,
		F1:        0.667,
	}

	t.Run("serialized shape", func(t *testing.T) {
		var buf bytes.Buffer
		if err := evaluation.NewReport(metrics).Write(&buf); err != nil {
			t.Fatalf("Write error: %v", err)
		}

		var parsed map[string]map[string]map[string]float64
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		classification, ok := parsed["classification_metrics"]
		if !ok {
			t.Fatal("classification_metrics key missing")
		}
		for _, name := range []string{"auc", "accuracy", "precision", "recall", "f1"} {
			metric, ok := classification[name]
			if !ok {
				t.Errorf("metric %s missing", name)
				continue
			}
			if _, ok := metric["value"]; !ok {
				t.Errorf("metric %s missing value key", name)
			}
		}
		if got := classification["auc"]["value"]; got != 0.82 {
			t.Errorf("auc value = %v, want 0.82", got)
		}
	})

	t.Run("round trip preserves AUC", func(t *testing.T) {
		var buf bytes.Buffer
		if err := evaluation.NewReport(metrics).Write(&buf); err != nil {
			t.Fatalf("Write error: %v", err)
		}

		report, err := evaluation.ReadReport(&buf)
		if err != nil {
			t.Fatalf("ReadReport error: %v", err)
		}
		auc, err := report.AUC()
		if err != nil {
			t.Fatalf("AUC error: %v", err)
		}
		if auc != 0.82 {
			t.Errorf("AUC = %v, want 0.82", auc)
		}
	})

	t.Run("missing auc metric", func(t *testing.T) {
		report, err := evaluation.ReadReport(strings.NewReader(`{"classification_metrics":{"accuracy":{"value":0.9}}}`))
		if err != nil {
			t.Fatalf("ReadReport error: %v", err)
		}
		if _, err := report.AUC(); !errors.Is(err, evaluation.ErrMissingMetric) {
			t.Errorf("err = %v, want ErrMissingMetric", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		if _, err := evaluation.ReadReport(strings.NewReader("")); err == nil {
			t.Error("ReadReport of empty input should fail")
		}
	})
}
