package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stonebriar/sagerelay/internal/config"
)

// Steps names the three units of work the machine sequences.
type Steps struct {
	CheckStatus  Step
	SyncRepos    Step
	CreateDeploy Step
}

// Machine sequences the project setup workflow: an initial settling wait,
// a bounded status poll loop, repository seeding with a bounded wait for
// the project's space, then deployment repository creation. Step errors
// land in the returned Context as a FAILED status; Run only returns an
// error for deadline or cancellation.
type Machine struct {
	cfg    *config.WorkflowConfig
	logger *slog.Logger
	steps  Steps
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewMachine builds a machine over the given steps.
func NewMachine(cfg *config.WorkflowConfig, logger *slog.Logger, steps Steps) (*Machine, error) {
	if steps.CheckStatus == nil || steps.SyncRepos == nil || steps.CreateDeploy == nil {
		return nil, ErrMissingSteps
	}
	return &Machine{
		cfg:    cfg,
		logger: logger.With("system", "workflow"),
		steps:  steps,
		sleep:  sleepContext,
	}, nil
}

// Run drives the workflow to a terminal context. The whole run is bounded
// by the configured timeout.
func (m *Machine) Run(ctx context.Context, wc Context) (Context, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.TimeoutDuration())
	defer cancel()

	m.logger.Info("workflow started", "project", wc.ProjectID, "domain", wc.DomainID)

	if err := m.sleep(ctx, m.cfg.InitialWaitDuration()); err != nil {
		return wc.WithError(ErrDeadlineExceeded), err
	}

	wc, err := m.awaitProject(ctx, wc)
	if err != nil || wc.Failed() {
		return m.finish(wc), err
	}

	wc, err = m.seedBuildRepo(ctx, wc)
	if err != nil || wc.Failed() {
		return m.finish(wc), err
	}

	wc = m.run(ctx, m.steps.CreateDeploy, wc)
	return m.finish(wc), nil
}

// awaitProject polls the project status until it settles or the poll budget
// is exhausted.
func (m *Machine) awaitProject(ctx context.Context, wc Context) (Context, error) {
	for attempt := 0; attempt < m.cfg.MaxProjectPolls; attempt++ {
		wc = m.run(ctx, m.steps.CheckStatus, wc)
		switch wc.Status {
		case StatusSuccessful:
			return wc, nil
		case StatusFailed:
			return wc, nil
		}
		if err := m.sleep(ctx, m.cfg.PollIntervalDuration()); err != nil {
			return wc.WithError(ErrDeadlineExceeded), err
		}
	}
	return wc.WithError(ErrProjectNotReady), nil
}

// seedBuildRepo runs the sync step, waiting out the project's space when it
// is not yet in service. The context produced by a waiting attempt is
// preserved into the retry.
func (m *Machine) seedBuildRepo(ctx context.Context, wc Context) (Context, error) {
	for attempt := 0; attempt < m.cfg.MaxSpaceWaits; attempt++ {
		wc = m.run(ctx, m.steps.SyncRepos, wc)
		if wc.Status != StatusWaitingForSpace {
			return wc, nil
		}
		m.logger.Info("space not ready, waiting",
			"project", wc.ProjectID,
			"attempt", attempt+1,
		)
		if err := m.sleep(ctx, m.cfg.SpaceWaitDuration()); err != nil {
			return wc.WithError(ErrDeadlineExceeded), err
		}
	}
	return wc.WithError(ErrSpaceNotReady), nil
}

func (m *Machine) run(ctx context.Context, step Step, wc Context) Context {
	next, err := step.Run(ctx, wc)
	if err != nil {
		m.logger.Error("step failed",
			"step", step.Name(),
			"project", wc.ProjectID,
			"error", err,
		)
		return wc.WithError(fmt.Errorf("%s: %w", step.Name(), err))
	}
	m.logger.Info("step completed",
		"step", step.Name(),
		"project", next.ProjectID,
		"status", next.Status,
		"version", next.Version(),
	)
	return next
}

func (m *Machine) finish(wc Context) Context {
	if wc.Failed() {
		m.logger.Error("workflow failed", "project", wc.ProjectID, "error", wc.Err)
		return wc
	}
	m.logger.Info("workflow succeeded", "project", wc.ProjectID, "version", wc.Version())
	return wc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
