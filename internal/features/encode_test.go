package features_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stonebriar/sagerelay/internal/dataset"
	"github.com/stonebriar/sagerelay/internal/features"
)

func TestEncode(t *testing.T) {
	table := dataset.New([]string{"age", "job", "y"})
	rows := [][]string{
		{"30", "technician", "yes"},
		{"45", "admin", "no"},
		{"22", "technician", "no"},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	encoded, err := features.Encode(table)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	t.Run("numeric columns pass through first", func(t *testing.T) {
		if encoded.Columns()[0] != "age" {
			t.Errorf("first column = %s, want age", encoded.Columns()[0])
		}
	})

	t.Run("dummy columns per sorted category", func(t *testing.T) {
		want := []string{"age", "job_admin", "job_technician", "y_no", "y_yes"}
		if !slices.Equal(encoded.Columns(), want) {
			t.Errorf("Columns = %v, want %v", encoded.Columns(), want)
		}
	})

	t.Run("dummy cells are 1.0/0.0", func(t *testing.T) {
		got, err := encoded.Column("job_technician")
		if err != nil {
			t.Fatalf("Column error: %v", err)
		}
		want := []string{"1.0", "0.0", "1.0"}
		if !slices.Equal(got, want) {
			t.Errorf("job_technician = %v, want %v", got, want)
		}
	})
}

func TestPrepareTarget(t *testing.T) {
	t.Run("positive label first, negative dropped", func(t *testing.T) {
		table := dataset.New([]string{"age", "y_no", "y_yes"})
		if err := table.Append([]string{"30", "0.0", "1.0"}); err != nil {
			t.Fatalf("Append error: %v", err)
		}

		prepared, err := features.PrepareTarget(table)
		if err != nil {
			t.Fatalf("PrepareTarget error: %v", err)
		}

		want := []string{"y_yes", "age"}
		if !slices.Equal(prepared.Columns(), want) {
			t.Errorf("Columns = %v, want %v", prepared.Columns(), want)
		}
	})

	t.Run("missing target fails", func(t *testing.T) {
		table := dataset.New([]string{"age"})
		if err := table.Append([]string{"30"}); err != nil {
			t.Fatalf("Append error: %v", err)
		}

		_, err := features.PrepareTarget(table)
		if !errors.Is(err, features.ErrMissingTarget) {
			t.Errorf("err = %v, want ErrMissingTarget", err)
		}
	})
}
