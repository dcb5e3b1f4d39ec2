package workflow

import "context"

// Step is a single unit of workflow work. Run receives the current workflow
// context and returns a derived one. A returned error marks the workflow
// failed; it does not propagate past the machine boundary.
type Step interface {
	Name() string
	Run(ctx context.Context, wc Context) (Context, error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc struct {
	StepName string
	Fn       func(ctx context.Context, wc Context) (Context, error)
}

func (s StepFunc) Name() string { return s.StepName }

func (s StepFunc) Run(ctx context.Context, wc Context) (Context, error) {
	return s.Fn(ctx, wc)
}
