package dataset_test

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stonebriar/sagerelay/internal/dataset"
)

func TestReadCSV(t *testing.T) {
	t.Run("parses header and rows", func(t *testing.T) {
		table, err := dataset.ReadCSV(strings.NewReader("age,job,y\n34,admin,yes\n51,technician,no\n"))
		if err != nil {
			t.Fatalf("ReadCSV: %v", err)
		}
		if !slices.Equal(table.Columns(), []string{"age", "job", "y"}) {
			t.Errorf("Columns = %v", table.Columns())
		}
		if table.Len() != 2 {
			t.Errorf("Len = %d, want 2", table.Len())
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := dataset.ReadCSV(strings.NewReader("")); !errors.Is(err, dataset.ErrEmptyTable) {
			t.Errorf("err = %v, want ErrEmptyTable", err)
		}
	})
}

func TestWriteHeadless(t *testing.T) {
	table := dataset.New([]string{"label", "f1"})
	for _, row := range [][]string{{"1", "0.5"}, {"0", "0.25"}} {
		if err := table.Append(row); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := table.WriteHeadless(&buf); err != nil {
		t.Fatalf("WriteHeadless: %v", err)
	}
	if got := buf.String(); got != "1,0.5\n0,0.25\n" {
		t.Errorf("output = %q", got)
	}
}

func TestReadHeadless(t *testing.T) {
	t.Run("assigns synthetic column names", func(t *testing.T) {
		table, err := dataset.ReadHeadless(strings.NewReader("1,0.5,3\n0,0.25,4\n"))
		if err != nil {
			t.Fatalf("ReadHeadless: %v", err)
		}
		if !slices.Equal(table.Columns(), []string{"label", "f1", "f2"}) {
			t.Errorf("Columns = %v", table.Columns())
		}
		labels, err := table.FloatColumn("label")
		if err != nil {
			t.Fatalf("FloatColumn: %v", err)
		}
		if !slices.Equal(labels, []float64{1, 0}) {
			t.Errorf("labels = %v", labels)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := dataset.ReadHeadless(strings.NewReader("")); !errors.Is(err, dataset.ErrEmptyTable) {
			t.Errorf("err = %v, want ErrEmptyTable", err)
		}
	})
}
