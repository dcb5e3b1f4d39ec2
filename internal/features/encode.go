package features

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/stonebriar/sagerelay/internal/dataset"
)

// TargetColumn is the encoded label column, written first in every split.
const TargetColumn = "y_yes"

const (
	labelColumn    = "y"
	negativeColumn = "y_no"
)

// Encode one-hot encodes every categorical column. Numeric columns pass
// through first in their original order; dummy columns follow, grouped by
// source column with category values in sorted order. Dummy cells are written
// as 1.0/0.0.
func Encode(t *dataset.Table) (*dataset.Table, error) {
	var numeric, categorical []string
	for _, name := range t.Columns() {
		isCat, err := isCategorical(t, name)
		if err != nil {
			return nil, err
		}
		if isCat {
			categorical = append(categorical, name)
		} else {
			numeric = append(numeric, name)
		}
	}

	out, err := t.Select(numeric)
	if err != nil {
		return nil, err
	}

	for _, name := range categorical {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for _, category := range sortedCategories(values) {
			cells := make([]string, len(values))
			for i, v := range values {
				if v == category {
					cells[i] = "1.0"
				} else {
					cells[i] = "0.0"
				}
			}
			if err := out.AddColumn(name+"_"+category, cells); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// PrepareTarget drops the negative label dummy and moves the positive one to
// the front so the label occupies the first column of the written CSV.
func PrepareTarget(t *dataset.Table) (*dataset.Table, error) {
	if !t.HasColumn(TargetColumn) {
		return nil, fmt.Errorf("%w: %s", ErrMissingTarget, TargetColumn)
	}

	t.DropColumns(negativeColumn)

	order := []string{TargetColumn}
	for _, name := range t.Columns() {
		if name != TargetColumn {
			order = append(order, name)
		}
	}
	return t.Select(order)
}

func isCategorical(t *dataset.Table, name string) (bool, error) {
	values, err := t.Column(name)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return true, nil
		}
	}
	return false, nil
}

func sortedCategories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var categories []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			categories = append(categories, v)
		}
	}
	sort.Strings(categories)
	return categories
}
