// Package evaluation computes binary classification metrics from predicted
// probabilities, writes the evaluation report consumed by the pipeline's
// registration condition, and optionally forwards metrics to an experiment
// tracking endpoint.
package evaluation

import (
	"fmt"
	"sort"
)

// DecisionThreshold converts probabilities into hard predictions.
const DecisionThreshold = 0.5

// Metrics holds the five classification metrics emitted by evaluation.
// All values are finite; undefined precision/recall cases yield zero.
type Metrics struct {
	AUC       float64
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Compute derives Metrics from predicted probabilities and true binary labels.
// Labels must be 0 or 1; probabilities are thresholded at DecisionThreshold.
func Compute(labels []int, probabilities []float64) (Metrics, error) {
	if len(labels) == 0 {
		return Metrics{}, ErrNoSamples
	}
	if len(labels) != len(probabilities) {
		return Metrics{}, fmt.Errorf("%w: %d labels, %d probabilities", ErrLengthMismatch, len(labels), len(probabilities))
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return Metrics{}, fmt.Errorf("%w: label %d at row %d", ErrInvalidLabel, y, i)
		}
	}

	predictions := make([]int, len(probabilities))
	for i, p := range probabilities {
		if p >= DecisionThreshold {
			predictions[i] = 1
		}
	}

	var tp, fp, fn, correct int
	for i, y := range labels {
		switch {
		case predictions[i] == 1 && y == 1:
			tp++
		case predictions[i] == 1 && y == 0:
			fp++
		case predictions[i] == 0 && y == 1:
			fn++
		}
		if predictions[i] == y {
			correct++
		}
	}

	m := Metrics{
		Accuracy: float64(correct) / float64(len(labels)),
		AUC:      auc(labels, probabilities),
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m, nil
}

// auc computes the area under the ROC curve as the Mann-Whitney rank
// statistic, averaging ranks across tied probabilities. Degenerate inputs
// with a single class return 0.
func auc(labels []int, probabilities []float64) float64 {
	n := len(labels)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return probabilities[order[a]] < probabilities[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probabilities[order[j]] == probabilities[order[i]] {
			j++
		}
		// 1-based average rank for the tie group [i, j)
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var positives int
	var rankSum float64
	for i, y := range labels {
		if y == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := n - positives
	if positives == 0 || negatives == 0 {
		return 0
	}

	return (rankSum - float64(positives)*float64(positives+1)/2) / (float64(positives) * float64(negatives))
}
