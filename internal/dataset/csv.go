package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a CSV document whose first record is the header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := New(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", table.Len()+1, err)
		}
		if err := table.Append(record); err != nil {
			return nil, fmt.Errorf("row %d: %w", table.Len()+1, err)
		}
	}

	return table, nil
}

// WriteHeadless writes the table as CSV without a header row. Training
// containers expect headerless input with the label in the first column.
func (t *Table) WriteHeadless(w io.Writer) error {
	writer := csv.NewWriter(w)
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadHeadless parses a headerless CSV document, assigning synthetic column
// names: "label" for the first column, then "f1", "f2", and so on.
func ReadHeadless(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	first, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}

	columns := make([]string, len(first))
	columns[0] = "label"
	for i := 1; i < len(first); i++ {
		columns[i] = fmt.Sprintf("f%d", i)
	}

	table := New(columns)
	if err := table.Append(first); err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", table.Len()+1, err)
		}
		if err := table.Append(record); err != nil {
			return nil, fmt.Errorf("row %d: %w", table.Len()+1, err)
		}
	}

	return table, nil
}
