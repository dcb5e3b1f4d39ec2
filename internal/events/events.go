// Package events parses the EventBridge envelopes that drive the relay:
// DataZone CreateProject calls recorded by CloudTrail, resumed workflow
// contexts fed back by the state machine, and SageMaker model package state
// changes.
package events

import (
	"fmt"

	"github.com/stonebriar/sagerelay/internal/workflow"
	"github.com/stonebriar/sagerelay/pkg/formatting"
)

// Detail types the relay routes on.
const (
	DetailTypeCloudTrail        = "AWS API Call via CloudTrail"
	DetailTypeModelPackageState = "SageMaker Model Package State Change"

	eventCreateProject = "CreateProject"
)

// Envelope is the outer EventBridge event shape.
type Envelope struct {
	DetailType string `json:"detail-type"`
	Source     string `json:"source"`
	Region     string `json:"region"`
	Detail     any    `json:"detail"`
}

// createProjectEvent is the CloudTrail record of a DataZone CreateProject
// call, nested under the envelope's detail.
type createProjectEvent struct {
	Detail struct {
		EventName        string `json:"eventName"`
		ResponseElements struct {
			ID       string `json:"id"`
			DomainID string `json:"domainId"`
		} `json:"responseElements"`
		RequestParameters struct {
			DomainIdentifier string `json:"domainIdentifier"`
			UserParameters   []struct {
				EnvironmentConfigurationName string `json:"environmentConfigurationName"`
				EnvironmentParameters        []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"environmentParameters"`
			} `json:"userParameters"`
		} `json:"requestParameters"`
	} `json:"detail"`
}

// resumedContext is a workflow context preserved through a Pass state and
// fed back for another attempt.
type resumedContext struct {
	ProjectID      string            `json:"project_id"`
	DomainID       string            `json:"domain_id"`
	Status         string            `json:"status"`
	UserParameters map[string]string `json:"user_parameters"`
}

// ProjectContext extracts a workflow context from an incoming event. Fresh
// CreateProject records seed a new context; payloads that already carry a
// project context resume it.
func ProjectContext(payload string) (workflow.Context, error) {
	event, err := formatting.Parse[createProjectEvent](payload)
	if err == nil && event.Detail.EventName == eventCreateProject {
		projectID := event.Detail.ResponseElements.ID
		domainID := event.Detail.ResponseElements.DomainID
		if domainID == "" {
			domainID = event.Detail.RequestParameters.DomainIdentifier
		}
		if projectID == "" || domainID == "" {
			return workflow.Context{}, fmt.Errorf("%w: create project record missing identifiers", ErrMalformedEvent)
		}
		wc := workflow.NewContext(projectID, domainID)
		if params := flattenUserParameters(event); len(params) > 0 {
			wc = wc.WithUserParameters(params)
		}
		return wc, nil
	}

	resumed, err := formatting.Parse[resumedContext](payload)
	if err != nil {
		return workflow.Context{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if resumed.ProjectID == "" || resumed.DomainID == "" {
		return workflow.Context{}, fmt.Errorf("%w: no project identifiers in payload", ErrMalformedEvent)
	}

	wc := workflow.NewContext(resumed.ProjectID, resumed.DomainID)
	if len(resumed.UserParameters) > 0 {
		wc = wc.WithUserParameters(resumed.UserParameters)
	}
	if resumed.Status != "" {
		wc = wc.WithStatus(workflow.Status(resumed.Status))
	}
	return wc, nil
}

func flattenUserParameters(event createProjectEvent) map[string]string {
	params := map[string]string{}
	for _, cfg := range event.Detail.RequestParameters.UserParameters {
		for _, p := range cfg.EnvironmentParameters {
			params[p.Name] = p.Value
		}
	}
	return params
}

// ModelPackageChange is a SageMaker model package state transition.
type ModelPackageChange struct {
	GroupName      string
	PackageARN     string
	ApprovalStatus string
}

type modelPackageEvent struct {
	DetailType string `json:"detail-type"`
	Detail     struct {
		ModelPackageGroupName string `json:"ModelPackageGroupName"`
		ModelPackageArn       string `json:"ModelPackageArn"`
		ModelApprovalStatus   string `json:"ModelApprovalStatus"`
	} `json:"detail"`
}

// ParseModelPackageChange extracts a model package state change from an
// incoming event.
func ParseModelPackageChange(payload string) (ModelPackageChange, error) {
	event, err := formatting.Parse[modelPackageEvent](payload)
	if err != nil {
		return ModelPackageChange{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if event.Detail.ModelPackageGroupName == "" {
		return ModelPackageChange{}, fmt.Errorf("%w: missing model package group", ErrMalformedEvent)
	}
	return ModelPackageChange{
		GroupName:      event.Detail.ModelPackageGroupName,
		PackageARN:     event.Detail.ModelPackageArn,
		ApprovalStatus: event.Detail.ModelApprovalStatus,
	}, nil
}
