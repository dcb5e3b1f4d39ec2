package features_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stonebriar/sagerelay/internal/dataset"
	"github.com/stonebriar/sagerelay/internal/features"
)

func buildNumbered(t *testing.T, n int) *dataset.Table {
	t.Helper()
	table := dataset.New([]string{"id"})
	for i := 0; i < n; i++ {
		if err := table.Append([]string{fmt.Sprint(i)}); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	return table
}

func TestSplit(t *testing.T) {
	const n = 1000
	table := buildNumbered(t, n)

	train, validation, test, err := features.Split(table, features.DefaultSeed, 0.7, 0.2)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}

	t.Run("partitions cover every row exactly once", func(t *testing.T) {
		if got := train.Len() + validation.Len() + test.Len(); got != n {
			t.Errorf("total rows = %d, want %d", got, n)
		}

		seen := make(map[string]int, n)
		for _, part := range []*dataset.Table{train, validation, test} {
			for i := 0; i < part.Len(); i++ {
				seen[part.Row(i)[0]]++
			}
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("row %s appears %d times", id, count)
			}
		}
		if len(seen) != n {
			t.Errorf("distinct rows = %d, want %d", len(seen), n)
		}
	})

	t.Run("partition sizes match ratios", func(t *testing.T) {
		if math.Abs(float64(train.Len())-0.7*n) > 0.02*n {
			t.Errorf("train size = %d, want ~%d", train.Len(), int(0.7*n))
		}
		if math.Abs(float64(validation.Len())-0.2*n) > 0.02*n {
			t.Errorf("validation size = %d, want ~%d", validation.Len(), int(0.2*n))
		}
	})

	t.Run("same seed reproduces the split", func(t *testing.T) {
		again, _, _, err := features.Split(buildNumbered(t, n), features.DefaultSeed, 0.7, 0.2)
		if err != nil {
			t.Fatalf("Split error: %v", err)
		}
		for i := 0; i < train.Len(); i++ {
			if train.Row(i)[0] != again.Row(i)[0] {
				t.Fatalf("row %d differs between runs: %s vs %s", i, train.Row(i)[0], again.Row(i)[0])
			}
		}
	})

	t.Run("different seed shuffles differently", func(t *testing.T) {
		other, _, _, err := features.Split(buildNumbered(t, n), 7, 0.7, 0.2)
		if err != nil {
			t.Fatalf("Split error: %v", err)
		}
		same := true
		for i := 0; i < train.Len(); i++ {
			if train.Row(i)[0] != other.Row(i)[0] {
				same = false
				break
			}
		}
		if same {
			t.Error("different seeds produced an identical train partition")
		}
	})
}

func TestSplitErrors(t *testing.T) {
	tests := []struct {
		name       string
		rows       int
		trainRatio float64
		valRatio   float64
		want       error
	}{
		{"ratios exceed one", 10, 0.8, 0.3, features.ErrBadRatios},
		{"zero train ratio", 10, 0, 0.2, features.ErrBadRatios},
		{"empty table", 0, 0.7, 0.2, dataset.ErrEmptyTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := features.Split(buildNumbered(t, tt.rows), 1, tt.trainRatio, tt.valRatio)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
