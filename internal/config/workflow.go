package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvWorkflowInitialWait  = "SAGERELAY_WORKFLOW_INITIAL_WAIT"
	EnvWorkflowPollInterval = "SAGERELAY_WORKFLOW_POLL_INTERVAL"
	EnvWorkflowSpaceWait    = "SAGERELAY_WORKFLOW_SPACE_WAIT"
	EnvWorkflowTimeout      = "SAGERELAY_WORKFLOW_TIMEOUT"
)

// WorkflowConfig holds timing and bound parameters for the project-setup
// state machine. Waits mirror the managed state machine definition: 10s
// before the first status check, 60s between project polls, 3m between
// space-readiness checks, 2h overall.
type WorkflowConfig struct {
	InitialWait     string `toml:"initial_wait"`
	PollInterval    string `toml:"poll_interval"`
	SpaceWait       string `toml:"space_wait"`
	Timeout         string `toml:"timeout"`
	MaxProjectPolls int    `toml:"max_project_polls"`
	MaxSpaceWaits   int    `toml:"max_space_waits"`
}

// InitialWaitDuration returns InitialWait as a time.Duration.
func (c *WorkflowConfig) InitialWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.InitialWait)
	return d
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *WorkflowConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// SpaceWaitDuration returns SpaceWait as a time.Duration.
func (c *WorkflowConfig) SpaceWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.SpaceWait)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *WorkflowConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.InitialWait != "" {
		c.InitialWait = overlay.InitialWait
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.SpaceWait != "" {
		c.SpaceWait = overlay.SpaceWait
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxProjectPolls != 0 {
		c.MaxProjectPolls = overlay.MaxProjectPolls
	}
	if overlay.MaxSpaceWaits != 0 {
		c.MaxSpaceWaits = overlay.MaxSpaceWaits
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.InitialWait == "" {
		c.InitialWait = "10s"
	}
	if c.PollInterval == "" {
		c.PollInterval = "60s"
	}
	if c.SpaceWait == "" {
		c.SpaceWait = "3m"
	}
	if c.Timeout == "" {
		c.Timeout = "2h"
	}
	if c.MaxProjectPolls == 0 {
		c.MaxProjectPolls = 60
	}
	if c.MaxSpaceWaits == 0 {
		c.MaxSpaceWaits = 20
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowInitialWait); v != "" {
		c.InitialWait = v
	}
	if v := os.Getenv(EnvWorkflowPollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvWorkflowSpaceWait); v != "" {
		c.SpaceWait = v
	}
	if v := os.Getenv(EnvWorkflowTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *WorkflowConfig) validate() error {
	for name, value := range map[string]string{
		"initial_wait":  c.InitialWait,
		"poll_interval": c.PollInterval,
		"space_wait":    c.SpaceWait,
		"timeout":       c.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.MaxProjectPolls < 1 {
		return fmt.Errorf("max_project_polls must be positive: %s", strconv.Itoa(c.MaxProjectPolls))
	}
	if c.MaxSpaceWaits < 1 {
		return fmt.Errorf("max_space_waits must be positive: %s", strconv.Itoa(c.MaxSpaceWaits))
	}
	return nil
}
