// Package features implements the marketing dataset feature engineering:
// derived indicator columns, age bucketing, non-predictive column removal,
// one-hot encoding with target-first output, and deterministic splitting.
package features

import (
	"fmt"
	"slices"

	"github.com/stonebriar/sagerelay/internal/dataset"
)

// Sentinel value in pdays marking a customer never contacted before.
const NoContactSentinel = 999

// Job categories indicating the customer is not working.
var NotWorkingJobs = []string{"student", "retired", "unemployed"}

// Columns unavailable at prediction time or non-predictive, removed before encoding.
var NonPredictiveColumns = []string{
	"duration",
	"emp.var.rate",
	"cons.price.idx",
	"cons.conf.idx",
	"euribor3m",
	"nr.employed",
}

// Derive adds the indicator columns computed from raw attributes:
// no_previous_contact (pdays == 999), not_working (job in NotWorkingJobs),
// and the three age buckets age_young [18,30], age_middle [31,50],
// age_senior [51,∞). For ages 18 and above, exactly one bucket is set.
func Derive(t *dataset.Table) error {
	pdays, err := t.FloatColumn("pdays")
	if err != nil {
		return fmt.Errorf("derive no_previous_contact: %w", err)
	}
	noContact := make([]string, len(pdays))
	for i, v := range pdays {
		noContact[i] = indicator(v == NoContactSentinel)
	}
	if err := t.AddColumn("no_previous_contact", noContact); err != nil {
		return err
	}

	jobs, err := t.Column("job")
	if err != nil {
		return fmt.Errorf("derive not_working: %w", err)
	}
	notWorking := make([]string, len(jobs))
	for i, v := range jobs {
		notWorking[i] = indicator(slices.Contains(NotWorkingJobs, v))
	}
	if err := t.AddColumn("not_working", notWorking); err != nil {
		return err
	}

	return deriveAgeBuckets(t)
}

func deriveAgeBuckets(t *dataset.Table) error {
	ages, err := t.FloatColumn("age")
	if err != nil {
		return fmt.Errorf("derive age buckets: %w", err)
	}

	young := make([]string, len(ages))
	middle := make([]string, len(ages))
	senior := make([]string, len(ages))
	for i, age := range ages {
		young[i] = indicator(age >= 18 && age <= 30)
		middle[i] = indicator(age >= 31 && age <= 50)
		senior[i] = indicator(age >= 51)
	}

	if err := t.AddColumn("age_young", young); err != nil {
		return err
	}
	if err := t.AddColumn("age_middle", middle); err != nil {
		return err
	}
	return t.AddColumn("age_senior", senior)
}

// DropNonPredictive removes the non-predictive columns. Absent columns are
// silently skipped.
func DropNonPredictive(t *dataset.Table) {
	t.DropColumns(NonPredictiveColumns...)
}

func indicator(cond bool) string {
	if cond {
		return "1"
	}
	return "0"
}
