package evaluation_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stonebriar/sagerelay/internal/evaluation"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompute(t *testing.T) {
	t.Run("perfect classifier", func(t *testing.T) {
		labels := []int{0, 0, 1, 1}
		probs := []float64{0.1, 0.2, 0.8, 0.9}

		m, err := evaluation.Compute(labels, probs)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if !approx(m.AUC, 1) {
			t.Errorf("AUC = %v, want 1", m.AUC)
		}
		if !approx(m.Accuracy, 1) || !approx(m.Precision, 1) || !approx(m.Recall, 1) || !approx(m.F1, 1) {
			t.Errorf("metrics = %+v, want all 1", m)
		}
	})

	t.Run("inverted classifier", func(t *testing.T) {
		labels := []int{1, 1, 0, 0}
		probs := []float64{0.1, 0.2, 0.8, 0.9}

		m, err := evaluation.Compute(labels, probs)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if !approx(m.AUC, 0) {
			t.Errorf("AUC = %v, want 0", m.AUC)
		}
		if !approx(m.Accuracy, 0) {
			t.Errorf("Accuracy = %v, want 0", m.Accuracy)
		}
	})

	t.Run("random ties", func(t *testing.T) {
		labels := []int{0, 1, 0, 1}
		probs := []float64{0.5, 0.5, 0.5, 0.5}

		m, err := evaluation.Compute(labels, probs)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if !approx(m.AUC, 0.5) {
			t.Errorf("AUC = %v, want 0.5 for all-tied probabilities", m.AUC)
		}
	})

	t.Run("no positive predictions yields zero precision", func(t *testing.T) {
		labels := []int{0, 1, 0, 1}
		probs := []float64{0.1, 0.2, 0.3, 0.4}

		m, err := evaluation.Compute(labels, probs)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if m.Precision != 0 || m.Recall != 0 || m.F1 != 0 {
			t.Errorf("precision/recall/f1 = %v/%v/%v, want zeros", m.Precision, m.Recall, m.F1)
		}
		if !approx(m.Accuracy, 0.5) {
			t.Errorf("Accuracy = %v, want 0.5", m.Accuracy)
		}
	})

	t.Run("single class AUC is zero", func(t *testing.T) {
		m, err := evaluation.Compute([]int{1, 1, 1}, []float64{0.2, 0.6, 0.9})
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if m.AUC != 0 {
			t.Errorf("AUC = %v, want 0 for single-class labels", m.AUC)
		}
	})

	t.Run("threshold is inclusive at 0.5", func(t *testing.T) {
		m, err := evaluation.Compute([]int{1, 0}, []float64{0.5, 0.49999})
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if !approx(m.Accuracy, 1) {
			t.Errorf("Accuracy = %v, want 1", m.Accuracy)
		}
	})

	t.Run("all metrics finite", func(t *testing.T) {
		m, err := evaluation.Compute([]int{0, 0}, []float64{0.9, 0.8})
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		for name, v := range map[string]float64{
			"auc": m.AUC, "accuracy": m.Accuracy, "precision": m.Precision,
			"recall": m.Recall, "f1": m.F1,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s = %v, want finite", name, v)
			}
		}
	})
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		probs  []float64
		want   error
	}{
		{"empty input", nil, nil, evaluation.ErrNoSamples},
		{"length mismatch", []int{0, 1}, []float64{0.5}, evaluation.ErrLengthMismatch},
		{"invalid label", []int{0, 2}, []float64{0.1, 0.9}, evaluation.ErrInvalidLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluation.Compute(tt.labels, tt.probs)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
