package workflow_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

func TestRenderASL(t *testing.T) {
	cfg := &config.WorkflowConfig{
		InitialWait:     "10s",
		PollInterval:    "60s",
		SpaceWait:       "3m",
		Timeout:         "2h",
		MaxProjectPolls: 60,
		MaxSpaceWaits:   20,
	}
	arns := workflow.ResourceARNs{
		CheckStatus:  "arn:aws:lambda:us-east-1:123456789012:function:check",
		SyncRepos:    "arn:aws:lambda:us-east-1:123456789012:function:sync",
		CreateDeploy: "arn:aws:lambda:us-east-1:123456789012:function:deploy",
	}

	t.Run("requires all task ARNs", func(t *testing.T) {
		_, err := workflow.RenderASL(cfg, workflow.ResourceARNs{CheckStatus: arns.CheckStatus})
		if !errors.Is(err, workflow.ErrMissingSteps) {
			t.Errorf("err = %v, want ErrMissingSteps", err)
		}
	})

	t.Run("renders the full setup machine", func(t *testing.T) {
		doc, err := workflow.RenderASL(cfg, arns)
		if err != nil {
			t.Fatalf("RenderASL: %v", err)
		}

		var machine workflow.StateMachine
		if err := json.Unmarshal([]byte(doc), &machine); err != nil {
			t.Fatalf("rendered document is not valid JSON: %v", err)
		}

		if machine.StartAt != "Wait Initial" {
			t.Errorf("StartAt = %q", machine.StartAt)
		}
		if machine.TimeoutSeconds != 7200 {
			t.Errorf("TimeoutSeconds = %d, want 7200", machine.TimeoutSeconds)
		}

		for _, name := range []string{
			"Wait Initial",
			"Check Project Status",
			"Project Status Choice",
			"Wait For Project",
			"Sync Repositories",
			"Sync Status Choice",
			"Wait For Space",
			"Preserve Context",
			"Create Deploy Repository",
			"Deploy Status Choice",
			"Setup Succeeded",
			"Setup Failed",
		} {
			if _, ok := machine.States[name]; !ok {
				t.Errorf("missing state %q", name)
			}
		}

		if got := machine.States["Check Project Status"].Resource; got != arns.CheckStatus {
			t.Errorf("check resource = %q", got)
		}
		if got := machine.States["Wait Initial"].Seconds; got != 10 {
			t.Errorf("initial wait = %d, want 10", got)
		}
		if got := machine.States["Wait For Space"].Seconds; got != 180 {
			t.Errorf("space wait = %d, want 180", got)
		}
	})

	t.Run("space wait loops through a context-preserving pass", func(t *testing.T) {
		doc, err := workflow.RenderASL(cfg, arns)
		if err != nil {
			t.Fatalf("RenderASL: %v", err)
		}
		var machine workflow.StateMachine
		if err := json.Unmarshal([]byte(doc), &machine); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		pass := machine.States["Preserve Context"]
		if pass.Type != "Pass" {
			t.Errorf("Preserve Context type = %q, want Pass", pass.Type)
		}
		if pass.Next != "Sync Repositories" {
			t.Errorf("Preserve Context next = %q", pass.Next)
		}
		if got := machine.States["Wait For Space"].Next; got != "Preserve Context" {
			t.Errorf("Wait For Space next = %q", got)
		}
	})

	t.Run("choices branch on the context status", func(t *testing.T) {
		doc, err := workflow.RenderASL(cfg, arns)
		if err != nil {
			t.Fatalf("RenderASL: %v", err)
		}
		var machine workflow.StateMachine
		if err := json.Unmarshal([]byte(doc), &machine); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		choice := machine.States["Project Status Choice"]
		if choice.Default != "Wait For Project" {
			t.Errorf("default = %q, want Wait For Project", choice.Default)
		}
		for _, branch := range choice.Choices {
			if branch.Variable != "$.status" {
				t.Errorf("choice variable = %q, want $.status", branch.Variable)
			}
		}

		sync := machine.States["Sync Status Choice"]
		if sync.Default != "Setup Failed" {
			t.Errorf("sync default = %q, want Setup Failed", sync.Default)
		}
	})
}
