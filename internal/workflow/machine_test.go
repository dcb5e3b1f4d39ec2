package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

func machineConfig() *config.WorkflowConfig {
	return &config.WorkflowConfig{
		InitialWait:     "1ms",
		PollInterval:    "1ms",
		SpaceWait:       "1ms",
		Timeout:         "5s",
		MaxProjectPolls: 3,
		MaxSpaceWaits:   2,
	}
}

func passStep(name string, status workflow.Status) workflow.StepFunc {
	return workflow.StepFunc{
		StepName: name,
		Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
			return wc.WithStatus(status), nil
		},
	}
}

func newMachine(t *testing.T, steps workflow.Steps) *workflow.Machine {
	t.Helper()
	m, err := workflow.NewMachine(machineConfig(), slog.New(slog.DiscardHandler), steps)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func TestNewMachine(t *testing.T) {
	t.Run("rejects missing steps", func(t *testing.T) {
		_, err := workflow.NewMachine(machineConfig(), slog.New(slog.DiscardHandler), workflow.Steps{
			CheckStatus: passStep("check", workflow.StatusSuccessful),
		})
		if !errors.Is(err, workflow.ErrMissingSteps) {
			t.Errorf("err = %v, want ErrMissingSteps", err)
		}
	})
}

func TestMachineRun(t *testing.T) {
	t.Run("happy path runs all three steps", func(t *testing.T) {
		var order []string
		record := func(name string, status workflow.Status) workflow.StepFunc {
			return workflow.StepFunc{
				StepName: name,
				Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
					order = append(order, name)
					return wc.WithStatus(status), nil
				},
			}
		}
		m := newMachine(t, workflow.Steps{
			CheckStatus:  record("check", workflow.StatusSuccessful),
			SyncRepos:    record("sync", workflow.StatusSuccessful),
			CreateDeploy: record("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if wc.Status != workflow.StatusSuccessful {
			t.Errorf("Status = %s, want SUCCESSFUL", wc.Status)
		}
		if got := strings.Join(order, " "); got != "check sync deploy" {
			t.Errorf("step order = %q", got)
		}
	})

	t.Run("step error becomes a failed context, not an error", func(t *testing.T) {
		m := newMachine(t, workflow.Steps{
			CheckStatus: workflow.StepFunc{
				StepName: "check",
				Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
					return wc, errors.New("datazone unavailable")
				},
			},
			SyncRepos:    passStep("sync", workflow.StatusSuccessful),
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !wc.Failed() {
			t.Fatal("context should be failed")
		}
		if !strings.Contains(wc.Err, "check") || !strings.Contains(wc.Err, "datazone unavailable") {
			t.Errorf("Err = %q, want step name and cause", wc.Err)
		}
	})

	t.Run("pending project polls until ready", func(t *testing.T) {
		polls := 0
		m := newMachine(t, workflow.Steps{
			CheckStatus: workflow.StepFunc{
				StepName: "check",
				Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
					polls++
					if polls < 3 {
						return wc.WithStatus(workflow.StatusPending), nil
					}
					return wc.WithStatus(workflow.StatusSuccessful), nil
				},
			},
			SyncRepos:    passStep("sync", workflow.StatusSuccessful),
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if polls != 3 {
			t.Errorf("polls = %d, want 3", polls)
		}
		if wc.Status != workflow.StatusSuccessful {
			t.Errorf("Status = %s, want SUCCESSFUL", wc.Status)
		}
	})

	t.Run("poll budget exhaustion fails the workflow", func(t *testing.T) {
		m := newMachine(t, workflow.Steps{
			CheckStatus:  passStep("check", workflow.StatusPending),
			SyncRepos:    passStep("sync", workflow.StatusSuccessful),
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !wc.Failed() {
			t.Fatal("context should be failed")
		}
		if wc.Err != workflow.ErrProjectNotReady.Error() {
			t.Errorf("Err = %q, want %q", wc.Err, workflow.ErrProjectNotReady)
		}
	})

	t.Run("waiting for space retries and preserves context", func(t *testing.T) {
		attempts := 0
		m := newMachine(t, workflow.Steps{
			CheckStatus: passStep("check", workflow.StatusSuccessful),
			SyncRepos: workflow.StepFunc{
				StepName: "sync",
				Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
					attempts++
					if attempts == 1 {
						return wc.WithSetup(workflow.Setup{ProjectName: "demo"}).
							WithStatus(workflow.StatusWaitingForSpace), nil
					}
					if wc.Setup.ProjectName != "demo" {
						t.Error("context from the waiting attempt was not preserved")
					}
					return wc.WithStatus(workflow.StatusSuccessful), nil
				},
			},
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if attempts != 2 {
			t.Errorf("sync attempts = %d, want 2", attempts)
		}
		if wc.Status != workflow.StatusSuccessful {
			t.Errorf("Status = %s, want SUCCESSFUL", wc.Status)
		}
	})

	t.Run("space wait budget exhaustion fails the workflow", func(t *testing.T) {
		m := newMachine(t, workflow.Steps{
			CheckStatus:  passStep("check", workflow.StatusSuccessful),
			SyncRepos:    passStep("sync", workflow.StatusWaitingForSpace),
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if wc.Err != workflow.ErrSpaceNotReady.Error() {
			t.Errorf("Err = %q, want %q", wc.Err, workflow.ErrSpaceNotReady)
		}
	})

	t.Run("failed status check stops before syncing", func(t *testing.T) {
		synced := false
		m := newMachine(t, workflow.Steps{
			CheckStatus: passStep("check", workflow.StatusFailed),
			SyncRepos: workflow.StepFunc{
				StepName: "sync",
				Fn: func(_ context.Context, wc workflow.Context) (workflow.Context, error) {
					synced = true
					return wc, nil
				},
			},
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(context.Background(), workflow.NewContext("proj", "dom"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if !wc.Failed() {
			t.Error("context should be failed")
		}
		if synced {
			t.Error("sync step ran after a failed status check")
		}
	})

	t.Run("cancellation surfaces as an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		m := newMachine(t, workflow.Steps{
			CheckStatus:  passStep("check", workflow.StatusSuccessful),
			SyncRepos:    passStep("sync", workflow.StatusSuccessful),
			CreateDeploy: passStep("deploy", workflow.StatusSuccessful),
		})

		wc, err := m.Run(ctx, workflow.NewContext("proj", "dom"))
		if err == nil {
			t.Fatal("expected an error from a cancelled context")
		}
		if !wc.Failed() {
			t.Error("context should be failed")
		}
	})
}
