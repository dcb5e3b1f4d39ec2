// Package dataset provides the tabular representation shared by the
// preprocessing and evaluation entry points: ordered named columns over string
// cells, with numeric accessors and headerless CSV round-tripping.
package dataset

import (
	"fmt"
	"slices"
	"strconv"
)

// Table holds rows of string cells under an ordered set of column names.
// Rows are positional; there is no identity beyond row index.
type Table struct {
	columns []string
	rows    [][]string
}

// New creates a Table with the given columns and no rows.
func New(columns []string) *Table {
	return &Table{columns: slices.Clone(columns)}
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("%w: row has %d cells, table has %d columns", ErrRaggedRow, len(row), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(row))
	return nil
}

// Row returns the row at index i.
func (t *Table) Row(i int) []string {
	return slices.Clone(t.rows[i])
}

// Cell returns the value at row i in the named column.
func (t *Table) Cell(i int, name string) (string, error) {
	j := slices.Index(t.columns, name)
	if j < 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return t.rows[i][j], nil
}

// Column returns all values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	j := slices.Index(t.columns, name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// FloatColumn returns the named column parsed as float64 values.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w: %q", name, i, ErrNotNumeric, v)
		}
		out[i] = f
	}
	return out, nil
}

// AddColumn appends a column with the given values, one per row.
func (t *Table) AddColumn(name string, values []string) error {
	if t.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: %d values for %d rows", ErrRaggedRow, len(values), len(t.rows))
	}
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// DropColumns removes the named columns. Absent names are ignored.
func (t *Table) DropColumns(names ...string) {
	keep := make([]int, 0, len(t.columns))
	for j, col := range t.columns {
		if !slices.Contains(names, col) {
			keep = append(keep, j)
		}
	}
	if len(keep) == len(t.columns) {
		return
	}

	columns := make([]string, len(keep))
	for i, j := range keep {
		columns[i] = t.columns[j]
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		next := make([]string, len(keep))
		for k, j := range keep {
			next[k] = row[j]
		}
		rows[i] = next
	}
	t.columns = columns
	t.rows = rows
}

// Select returns a new Table containing the named columns in the given order.
func (t *Table) Select(names []string) (*Table, error) {
	indices := make([]int, len(names))
	for i, name := range names {
		j := slices.Index(t.columns, name)
		if j < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		indices[i] = j
	}

	out := New(names)
	for _, row := range t.rows {
		next := make([]string, len(indices))
		for k, j := range indices {
			next[k] = row[j]
		}
		out.rows = append(out.rows, next)
	}
	return out, nil
}

// Slice returns a new Table holding rows [from, to).
func (t *Table) Slice(from, to int) *Table {
	out := New(t.columns)
	for _, row := range t.rows[from:to] {
		out.rows = append(out.rows, slices.Clone(row))
	}
	return out
}

// Permute returns a new Table with rows reordered by the given index permutation.
func (t *Table) Permute(perm []int) (*Table, error) {
	if len(perm) != len(t.rows) {
		return nil, fmt.Errorf("%w: permutation has %d entries for %d rows", ErrRaggedRow, len(perm), len(t.rows))
	}
	out := New(t.columns)
	for _, i := range perm {
		out.rows = append(out.rows, slices.Clone(t.rows[i]))
	}
	return out, nil
}
