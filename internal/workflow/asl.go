package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/stonebriar/sagerelay/internal/config"
)

// MachineName is the Step Functions state machine name provisioned for
// project setup.
const MachineName = "ml-ops-project-setup"

// ResourceARNs names the task targets invoked by the rendered machine.
type ResourceARNs struct {
	CheckStatus  string
	SyncRepos    string
	CreateDeploy string
}

// StateMachine is an Amazon States Language document.
type StateMachine struct {
	Comment        string           `json:"Comment"`
	StartAt        string           `json:"StartAt"`
	TimeoutSeconds int              `json:"TimeoutSeconds"`
	States         map[string]State `json:"States"`
}

// State is a single ASL state. Only the fields relevant to the state's Type
// are populated.
type State struct {
	Type       string   `json:"Type"`
	Next       string   `json:"Next,omitempty"`
	End        bool     `json:"End,omitempty"`
	Seconds    int      `json:"Seconds,omitempty"`
	Resource   string   `json:"Resource,omitempty"`
	ResultPath string   `json:"ResultPath,omitempty"`
	Choices    []Choice `json:"Choices,omitempty"`
	Default    string   `json:"Default,omitempty"`
	Cause      string   `json:"Cause,omitempty"`
	Error      string   `json:"Error,omitempty"`
}

// Choice is a string-equality branch in a Choice state.
type Choice struct {
	Variable     string `json:"Variable"`
	StringEquals string `json:"StringEquals"`
	Next         string `json:"Next"`
}

// RenderASL renders the project setup machine as an ASL document for
// provisioning in Step Functions. The rendered machine mirrors the in-process
// machine: initial settling wait, project status poll loop, repository
// seeding with a space wait loop that preserves the accumulated context, then
// deployment repository creation.
func RenderASL(cfg *config.WorkflowConfig, arns ResourceARNs) (string, error) {
	if arns.CheckStatus == "" || arns.SyncRepos == "" || arns.CreateDeploy == "" {
		return "", fmt.Errorf("%w: task resource ARNs are required", ErrMissingSteps)
	}

	machine := StateMachine{
		Comment:        "Project setup: poll project, seed build repository, create deploy repository",
		StartAt:        "Wait Initial",
		TimeoutSeconds: int(cfg.TimeoutDuration().Seconds()),
		States: map[string]State{
			"Wait Initial": {
				Type:    "Wait",
				Seconds: int(cfg.InitialWaitDuration().Seconds()),
				Next:    "Check Project Status",
			},
			"Check Project Status": {
				Type:     "Task",
				Resource: arns.CheckStatus,
				Next:     "Project Status Choice",
			},
			"Project Status Choice": {
				Type: "Choice",
				Choices: []Choice{
					{Variable: "$.status", StringEquals: string(StatusSuccessful), Next: "Sync Repositories"},
					{Variable: "$.status", StringEquals: string(StatusFailed), Next: "Setup Failed"},
				},
				Default: "Wait For Project",
			},
			"Wait For Project": {
				Type:    "Wait",
				Seconds: int(cfg.PollIntervalDuration().Seconds()),
				Next:    "Check Project Status",
			},
			"Sync Repositories": {
				Type:     "Task",
				Resource: arns.SyncRepos,
				Next:     "Sync Status Choice",
			},
			"Sync Status Choice": {
				Type: "Choice",
				Choices: []Choice{
					{Variable: "$.status", StringEquals: string(StatusWaitingForSpace), Next: "Wait For Space"},
					{Variable: "$.status", StringEquals: string(StatusSuccessful), Next: "Create Deploy Repository"},
				},
				Default: "Setup Failed",
			},
			"Wait For Space": {
				Type:    "Wait",
				Seconds: int(cfg.SpaceWaitDuration().Seconds()),
				Next:    "Preserve Context",
			},
			"Preserve Context": {
				Type: "Pass",
				Next: "Sync Repositories",
			},
			"Create Deploy Repository": {
				Type:     "Task",
				Resource: arns.CreateDeploy,
				Next:     "Deploy Status Choice",
			},
			"Deploy Status Choice": {
				Type: "Choice",
				Choices: []Choice{
					{Variable: "$.status", StringEquals: string(StatusSuccessful), Next: "Setup Succeeded"},
				},
				Default: "Setup Failed",
			},
			"Setup Succeeded": {
				Type: "Succeed",
			},
			"Setup Failed": {
				Type:  "Fail",
				Error: "ProjectSetupFailed",
				Cause: "A setup step reported FAILED status",
			},
		},
	}

	data, err := json.MarshalIndent(machine, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal state machine: %w", err)
	}
	return string(data), nil
}
